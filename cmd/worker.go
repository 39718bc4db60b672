package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yakey01/dokterku-sub009/internal/alertgateway"
	"github.com/yakey01/dokterku-sub009/internal/core/events"
	"github.com/yakey01/dokterku-sub009/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools for alert delivery and event processing`,
}

var alertWorkerCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Start alert delivery worker pool",
	Long:  `Start the webhook alert worker pool for delivering reviewer notifications`,
	Run: func(cmd *cobra.Command, args []string) {
		startAlertWorker()
	},
}

var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	maxWorkers     int
	jobQueueSize   int
	workerPoolSize int
	alertAPIKey    string
	webhookURL     string
)

func startAlertWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.LoggerWrapper()

	// Command line flags win over config values.
	alertConfig := alertgateway.Config{
		WebhookURL:     getStringFlag(webhookURL, config.Notifier.WebhookURL),
		APIKey:         getStringFlag(alertAPIKey, config.Notifier.APIKey),
		SendTimeout:    config.Notifier.SendTimeout,
		MaxWorkers:     getIntFlag(maxWorkers, config.Notifier.MaxWorkers),
		JobQueueSize:   getIntFlag(jobQueueSize, config.Notifier.JobQueueSize),
		WorkerPoolSize: getIntFlag(workerPoolSize, config.Notifier.WorkerPoolSize),
	}

	log.Info("starting alert worker",
		"max_workers", alertConfig.MaxWorkers,
		"job_queue_size", alertConfig.JobQueueSize,
		"worker_pool_size", alertConfig.WorkerPoolSize,
		"webhook_url", alertConfig.WebhookURL)

	client := alertgateway.NewClient(alertConfig, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("alert worker is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	log.Info("received signal, shutting down alert worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		client.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		log.Info("alert worker pool shutdown complete")
	case <-ctx.Done():
		log.Warn("shutdown timeout reached, forcing exit")
	}
}

func startEventWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.LoggerWrapper()

	eventBus := events.NewEventBus(log)

	eventBus.Subscribe("test.event", func(ctx context.Context, event events.Event) error {
		log.Info("received test event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	log.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("received signal, shutting down event bus", "signal", sig)
	log.Info("event bus shutdown complete")
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	alertWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	alertWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	alertWorkerCmd.Flags().IntVar(&workerPoolSize, "worker-pool-size", 0, "Worker pool channel size (overrides config)")
	alertWorkerCmd.Flags().StringVar(&alertAPIKey, "api-key", "", "Webhook API key (overrides config)")
	alertWorkerCmd.Flags().StringVar(&webhookURL, "webhook-url", "", "Webhook URL (overrides config)")

	workerCmd.AddCommand(alertWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
