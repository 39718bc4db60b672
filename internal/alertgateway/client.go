package alertgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// AlertJob is one outbound webhook delivery describing a record that needs
// reviewer attention.
type AlertJob struct {
	Level      string                 `json:"level"`
	Title      string                 `json:"title"`
	Body       string                 `json:"body"`
	EntityType string                 `json:"entity_type"`
	EntityID   int64                  `json:"entity_id"`
	Details    map[string]interface{} `json:"details,omitempty"`
	QueuedAt   time.Time              `json:"queued_at"`
}

type Worker struct {
	ID         int
	WorkerPool chan chan AlertJob
	JobChannel chan AlertJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan AlertJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan AlertJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(AlertJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker delivering alert", "worker_id", w.ID, "entity_id", job.EntityID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Client delivers reviewer alerts to an external messaging webhook through a
// bounded worker pool. Enqueueing never blocks: a full queue rejects the
// alert so a slow endpoint cannot back-pressure request handling.
type Client struct {
	webhookURL  string
	apiKey      string
	sendTimeout time.Duration
	logger      *slog.Logger
	httpClient  *http.Client

	jobQueue   chan AlertJob
	workerPool chan chan AlertJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type Config struct {
	WebhookURL     string
	APIKey         string
	SendTimeout    time.Duration
	MaxWorkers     int
	JobQueueSize   int
	WorkerPoolSize int
}

func NewClient(config Config, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	client := &Client{
		webhookURL:  config.WebhookURL,
		apiKey:      config.APIKey,
		sendTimeout: sendTimeout,
		logger:      logger,
		httpClient:  &http.Client{Timeout: sendTimeout},

		maxWorkers: maxWorkers,
		jobQueue:   make(chan AlertJob, jobQueueSize),
		workerPool: make(chan chan AlertJob, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.startWorkerPool()

	return client
}

func (c *Client) startWorkerPool() {
	c.once.Do(func() {

		for i := 0; i < c.maxWorkers; i++ {
			worker := NewWorker(i, c.workerPool, c.logger)
			worker.Start(c.ctx, &c.wg, c.deliverAlert)
		}

		c.wg.Add(1)
		go c.dispatch()

		c.logger.Info("alert gateway worker pool started",
			"max_workers", c.maxWorkers,
			"queue_size", cap(c.jobQueue))
	})
}

func (c *Client) dispatch() {
	defer c.wg.Done()

	for {
		select {
		case job := <-c.jobQueue:

			select {
			case jobChannel := <-c.workerPool:

				select {
				case jobChannel <- job:

				case <-c.ctx.Done():
					c.logger.Info("dispatcher shutting down")
					return
				}
			case <-c.ctx.Done():
				c.logger.Info("dispatcher shutting down")
				return
			}
		case <-c.ctx.Done():
			c.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (c *Client) Shutdown() {
	c.logger.Info("shutting down alert gateway client")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("alert gateway client shutdown complete")
}

// SendAlert queues an alert for asynchronous delivery. A full queue rejects
// the alert immediately.
func (c *Client) SendAlert(job AlertJob) error {
	if c.webhookURL == "" {
		c.logger.Debug("no alert webhook configured, dropping alert", "entity_id", job.EntityID)
		return nil
	}

	job.QueuedAt = time.Now()

	select {
	case c.jobQueue <- job:
		c.logger.Info("alert queued for delivery",
			"entity_type", job.EntityType,
			"entity_id", job.EntityID,
			"queue_length", len(c.jobQueue))
		return nil
	default:
		c.logger.Warn("alert queue full, rejecting alert",
			"entity_type", job.EntityType,
			"entity_id", job.EntityID,
			"queue_capacity", cap(c.jobQueue))
		return fmt.Errorf("alert queue full")
	}
}

func (c *Client) deliverAlert(job AlertJob) {
	jsonData, err := json.Marshal(job)
	if err != nil {
		c.logger.Error("failed to marshal alert payload", "error", err, "entity_id", job.EntityID)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		c.logger.Error("failed to create alert request", "error", err, "entity_id", job.EntityID)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("alert delivery failed",
			"error", err,
			"entity_type", job.EntityType,
			"entity_id", job.EntityID)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Info("alert delivered",
			"entity_type", job.EntityType,
			"entity_id", job.EntityID,
			"status_code", resp.StatusCode)
	} else {
		c.logger.Warn("alert endpoint returned error",
			"entity_type", job.EntityType,
			"entity_id", job.EntityID,
			"status_code", resp.StatusCode)
	}
}
