package request

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/access-management/internal/core/events"
)

// AuditHandler records request lifecycle events in the audit log.
type AuditHandler struct {
	logger *slog.Logger
}

func NewAuditHandler(logger *slog.Logger) *AuditHandler {
	return &AuditHandler{logger: logger.With("component", "audit")}
}

func (h *AuditHandler) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeRequestSubmitted, h.HandleRequestSubmitted)
	bus.Subscribe(events.EventTypeRequestReviewed, h.HandleRequestReviewed)
}

func (h *AuditHandler) HandleRequestSubmitted(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.RequestSubmittedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}

	h.logger.InfoContext(ctx, "audit: access request submitted",
		"event_id", e.EventID(),
		"request_id", e.RequestID,
		"user_id", e.UserID,
		"software_id", e.SoftwareID,
		"access_type", e.AccessType,
		"occurred_at", e.OccurredAt())
	return nil
}

func (h *AuditHandler) HandleRequestReviewed(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.RequestReviewedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}

	h.logger.InfoContext(ctx, "audit: access request reviewed",
		"event_id", e.EventID(),
		"request_id", e.RequestID,
		"user_id", e.UserID,
		"reviewer_id", e.ReviewerID,
		"status", e.Status,
		"occurred_at", e.OccurredAt())
	return nil
}
