package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/config"
	"github.com/helpdesk-kit/helpdesk-service/internal/events"
)

// NotificationService reacts to lifecycle events with outbound
// notifications. Delivery is a structured-log stub; the channels and
// recipients are real, the transport is not.
type NotificationService struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{cfg: cfg, logger: logger}
}

// HandleTicketCreated confirms receipt to the requester.
func (s *NotificationService) HandleTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: ticket created",
		zap.String("channel", "email"),
		zap.String("from", s.cfg.EmailFrom),
		zap.String("recipient_user_id", payload.RequesterID),
		zap.String("ticket_key", event.TicketKey),
		zap.String("priority", string(payload.Priority)),
		zap.Time("due_date", payload.DueDate))
	return nil
}

// HandleTicketAssigned tells the agent about new work.
func (s *NotificationService) HandleTicketAssigned(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: ticket assigned",
		zap.String("channel", "email"),
		zap.String("from", s.cfg.EmailFrom),
		zap.String("recipient_user_id", payload.AgentID),
		zap.String("ticket_key", event.TicketKey),
		zap.Time("assigned_at", payload.AssignedAt))
	return nil
}

// HandleTicketStatusChanged mirrors transitions to the configured webhook.
func (s *NotificationService) HandleTicketStatusChanged(_ context.Context, event events.Event) error {
	if s.cfg.WebhookURL == "" {
		return nil
	}
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: status changed",
		zap.String("channel", "webhook"),
		zap.String("webhook_url", s.cfg.WebhookURL),
		zap.String("ticket_key", event.TicketKey),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	return nil
}

// HandleTicketResolved closes the loop with the requester.
func (s *NotificationService) HandleTicketResolved(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketResolvedPayload)
	if !ok {
		return nil
	}
	fields := []zap.Field{
		zap.String("channel", "email"),
		zap.String("from", s.cfg.EmailFrom),
		zap.String("recipient_user_id", payload.RequesterID),
		zap.String("ticket_key", event.TicketKey),
		zap.String("final_status", string(payload.Status)),
		zap.Time("resolved_at", payload.ResolvedAt),
	}
	if payload.AgentID != nil {
		fields = append(fields, zap.String("agent_id", *payload.AgentID))
	}
	s.logger.Info("notify: ticket resolved", fields...)
	return nil
}
