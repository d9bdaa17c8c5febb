// Package consumer applies dispatch-platform events to shipments.
package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/loadhive/service-shipment/internal/application"
	"github.com/loadhive/service-shipment/internal/events"
	"github.com/loadhive/service-shipment/pkg/kafka"
)

// DispatchEventConsumer listens to dispatch events and advances the
// corresponding shipments through their lifecycle.
type DispatchEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.ShipmentService
	logger   *zap.Logger
}

// NewDispatchEventConsumer creates a new DispatchEventConsumer.
func NewDispatchEventConsumer(
	brokers []string,
	groupID string,
	service *application.ShipmentService,
	logger *zap.Logger,
) *DispatchEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicDispatchEvents, logger)
	return &DispatchEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming dispatch events. This blocks until the context is cancelled.
func (c *DispatchEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *DispatchEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *DispatchEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from dispatch topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.DispatchAssigned:
		return c.handleAssigned(ctx, cloudEvent)
	case events.DispatchPickedUp:
		return c.handlePickedUp(ctx, cloudEvent)
	case events.DispatchDelivered:
		return c.handleDelivered(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled dispatch event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *DispatchEventConsumer) handleAssigned(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.CourierAssignedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse CourierAssignedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	_, err := c.service.AssignCourier(ctx, evt.ShipmentID, evt.CourierID)
	if err != nil {
		c.logger.Error("failed to assign courier",
			zap.String("shipment_id", evt.ShipmentID.String()),
			zap.String("courier_id", evt.CourierID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("courier assigned to shipment",
		zap.String("shipment_id", evt.ShipmentID.String()),
		zap.String("courier_id", evt.CourierID.String()),
	)
	return nil
}

func (c *DispatchEventConsumer) handlePickedUp(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.LoadPickedUpEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse LoadPickedUpEvent data", zap.Error(err))
		return nil
	}

	_, err := c.service.MarkPickedUp(ctx, evt.ShipmentID)
	if err != nil {
		c.logger.Error("failed to mark shipment picked up",
			zap.String("shipment_id", evt.ShipmentID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("shipment picked up",
		zap.String("shipment_id", evt.ShipmentID.String()),
	)
	return nil
}

func (c *DispatchEventConsumer) handleDelivered(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.LoadDeliveredEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse LoadDeliveredEvent data", zap.Error(err))
		return nil
	}

	if _, err := c.service.MarkDelivered(ctx, evt.ShipmentID); err != nil {
		c.logger.Error("failed to mark shipment delivered",
			zap.String("shipment_id", evt.ShipmentID.String()),
			zap.Error(err),
		)
		return err
	}

	// Settlement is immediate on delivery; there is no escrow step.
	if _, err := c.service.CompleteShipment(ctx, evt.ShipmentID); err != nil {
		c.logger.Error("failed to complete delivered shipment",
			zap.String("shipment_id", evt.ShipmentID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("shipment delivered and completed",
		zap.String("shipment_id", evt.ShipmentID.String()),
	)
	return nil
}
