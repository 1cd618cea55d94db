package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"chat-order-service/internal/models"
	"chat-order-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher publishes chat order events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPlaced publishes an OrderPlaced event keyed by order number
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return ep.producer.PublishEvent(ctx, "order-"+event.OrderNumber, event)
}

// EventHandler routes menu events from the catalog store
type EventHandler struct {
	onMenuChanged func(context.Context, *models.MenuEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnMenuChanged registers a handler for item updates, removals and reloads
func (eh *EventHandler) OnMenuChanged(handler func(context.Context, *models.MenuEvent) error) {
	eh.onMenuChanged = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeMenuItemUpdated, models.EventTypeMenuItemRemoved, models.EventTypeMenuReloaded:
		if eh.onMenuChanged == nil {
			return nil
		}
		var event models.MenuEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal %s event: %w", baseEvent.EventType, err)
		}
		return eh.onMenuChanged(ctx, &event)

	default:
		util.GetLogger().Debug("Unhandled event type",
			zap.String("type", baseEvent.EventType),
			zap.String("event_id", baseEvent.EventID))
	}

	return nil
}
