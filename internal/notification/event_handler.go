package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yakey01/dokterku-sub009/internal/alertgateway"
	"github.com/yakey01/dokterku-sub009/internal/core/events"
)

// AlertSender pushes an alert to the external messaging webhook; delivery is
// asynchronous and best-effort.
type AlertSender interface {
	SendAlert(job alertgateway.AlertJob) error
}

// EventHandler turns domain events into persistent bendahara notifications
// and outbound webhook alerts.
type EventHandler struct {
	service *Service
	alerts  AlertSender
	logger  *slog.Logger
}

func NewEventHandler(service *Service, alerts AlertSender, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		alerts:  alerts,
		logger:  logger,
	}
}

// HandleValidationStatusReset persists a warning for the bendahara role
// whenever an approved tindakan is knocked back to pending.
func (h *EventHandler) HandleValidationStatusReset(ctx context.Context, event events.Event) error {
	resetEvent, ok := event.(*events.ValidationStatusResetEvent)
	if !ok {
		h.logger.Error("invalid event type for validation reset handler", "event_type", event.EventType())
		return fmt.Errorf("expected ValidationStatusResetEvent, got %T", event)
	}

	h.logger.Info("handling validation reset event",
		"entity_type", resetEvent.EntityType,
		"entity_id", resetEvent.EntityID,
		"changed_fields", strings.Join(resetEvent.ChangedFields, ","),
		"event_id", resetEvent.EventID())

	body := fmt.Sprintf(
		"Tindakan %s untuk pasien %s (dokter %s, tanggal %s, tarif %s) diubah oleh %s. Field yang berubah: %s. Status dikembalikan ke pending.",
		resetEvent.TindakanName,
		resetEvent.PasienName,
		resetEvent.DokterName,
		resetEvent.TanggalLabel,
		resetEvent.Tarif,
		resetEvent.EditorName,
		strings.Join(resetEvent.ChangedFields, ", "),
	)

	n := &Notification{
		RecipientRole:    "bendahara",
		Level:            LevelWarning,
		Title:            "Validasi ulang diperlukan",
		Body:             body,
		SourceEntityType: resetEvent.EntityType,
		SourceEntityID:   resetEvent.EntityID,
	}

	if err := h.service.Notify(n); err != nil {
		return fmt.Errorf("failed to persist reset notification for %s %d: %w",
			resetEvent.EntityType, resetEvent.EntityID, err)
	}

	if h.alerts != nil {
		alert := alertgateway.AlertJob{
			Level:      LevelWarning,
			Title:      n.Title,
			Body:       body,
			EntityType: resetEvent.EntityType,
			EntityID:   resetEvent.EntityID,
			Details: map[string]interface{}{
				"prior_status":   resetEvent.PriorStatus,
				"new_status":     resetEvent.NewStatus,
				"changed_fields": resetEvent.ChangedFields,
				"editor_name":    resetEvent.EditorName,
			},
		}
		if err := h.alerts.SendAlert(alert); err != nil {
			// alert delivery is best-effort, the notification row is the
			// system of record
			h.logger.Warn("failed to queue reset alert",
				"entity_id", resetEvent.EntityID,
				"error", err)
		}
	}

	return nil
}

// HandleTindakanApproved persists an informational notification for the
// record's input staff via the bendahara review trail.
func (h *EventHandler) HandleTindakanApproved(ctx context.Context, event events.Event) error {
	approvedEvent, ok := event.(*events.TindakanApprovedEvent)
	if !ok {
		h.logger.Error("invalid event type for approval handler", "event_type", event.EventType())
		return fmt.Errorf("expected TindakanApprovedEvent, got %T", event)
	}

	n := &Notification{
		RecipientRole: "bendahara",
		Level:         LevelInfo,
		Title:         "Tindakan disetujui",
		Body: fmt.Sprintf("Tindakan #%d (tarif %s) disetujui oleh %s.",
			approvedEvent.TindakanID, approvedEvent.Tarif, approvedEvent.ApproverName),
		SourceEntityType: "Tindakan",
		SourceEntityID:   approvedEvent.TindakanID,
	}

	if err := h.service.Notify(n); err != nil {
		return fmt.Errorf("failed to persist approval notification for tindakan %d: %w",
			approvedEvent.TindakanID, err)
	}

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeValidationStatusReset, h.HandleValidationStatusReset)
	eventBus.Subscribe(events.EventTypeTindakanApproved, h.HandleTindakanApproved)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypeValidationStatusReset, events.EventTypeTindakanApproved})
}
