package worker

import (
	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/events"
	"github.com/helpdesk-kit/helpdesk-service/internal/service"
)

// StartNotificationWorker wires notification handlers onto the dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) {
	dispatcher.Subscribe(events.EventTicketCreated, notifications.HandleTicketCreated)
	dispatcher.Subscribe(events.EventTicketAssigned, notifications.HandleTicketAssigned)
	dispatcher.Subscribe(events.EventTicketStatusChanged, notifications.HandleTicketStatusChanged)
	dispatcher.Subscribe(events.EventTicketResolved, notifications.HandleTicketResolved)
	logger.Info("notification worker subscribed",
		zap.Strings("events", []string{
			string(events.EventTicketCreated),
			string(events.EventTicketAssigned),
			string(events.EventTicketStatusChanged),
			string(events.EventTicketResolved),
		}))
}
