package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
)

// NotificationService reacts to domain events. Delivery channels are
// out of scope; events are logged so operators can follow ticket
// activity.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketNoteAdded, n.handleTicketNoteAdded)
}

func (n *NotificationService) handleTicketCreated(_ context.Context, event events.Event) error {
	n.logger.Info("ticket created",
		zap.String("ticket_id", event.TicketID),
		zap.String("actor", event.Actor.UserID),
		zap.Any("payload", event.Payload),
	)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("ticket status changed",
		zap.String("ticket_id", event.TicketID),
		zap.String("actor", event.Actor.UserID),
		zap.Any("payload", event.Payload),
	)
	return nil
}

func (n *NotificationService) handleTicketNoteAdded(_ context.Context, event events.Event) error {
	n.logger.Info("ticket note added",
		zap.String("ticket_id", event.TicketID),
		zap.String("actor", event.Actor.UserID),
		zap.Any("payload", event.Payload),
	)
	return nil
}
