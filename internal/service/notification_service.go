package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/expedition-service/internal/events"
)

// NotificationService emits operational notifications for domain events. The
// delivery channels are log stubs; the dispatcher wiring is the contract.
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
	n.dispatcher.Subscribe(events.EventPickupCreated, n.handlePickupCreated)
	n.dispatcher.Subscribe(events.EventTimelineEntryClosed, n.handleTimelineEntryClosed)
	n.dispatcher.Subscribe(events.EventOccurrenceResolved, n.handleOccurrenceResolved)
	n.dispatcher.Subscribe(events.EventOrderMarkedShipped, n.handleOrderMarkedShipped)
}

func (n *NotificationService) handlePickupCreated(_ context.Context, event events.Event) error {
	n.logger.Info("PickupCreated", zap.String("pickup_id", event.Subject), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTimelineEntryClosed(_ context.Context, event events.Event) error {
	n.logger.Info("TimelineEntryClosed", zap.String("pickup_id", event.Subject), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleOccurrenceResolved(_ context.Context, event events.Event) error {
	n.logger.Info("OccurrenceResolved", zap.String("pickup_id", event.Subject), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleOrderMarkedShipped(_ context.Context, event events.Event) error {
	n.logger.Info("OrderMarkedShipped", zap.String("order_id", event.Subject), zap.Any("payload", event.Payload))
	return nil
}
