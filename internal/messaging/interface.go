package messaging

import (
	"context"

	"go.uber.org/zap"
)

// PublisherInterface defines the contract for event publishing
// This allows for easy mocking in tests
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, eventData interface{}) error
	Close() error
}

// Ensure Publisher implements PublisherInterface
var _ PublisherInterface = (*Publisher)(nil)
var _ PublisherInterface = NopPublisher{}

// NopPublisher drops every event. Used when RabbitMQ is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                       { return nil }

// PublishOrLog publishes an event and logs a failure instead of returning it.
// Domain writes have already succeeded when events are emitted.
func PublishOrLog(ctx context.Context, p PublisherInterface, logger *zap.Logger, routingKey string, event interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, event); err != nil {
		logger.Warn("failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
