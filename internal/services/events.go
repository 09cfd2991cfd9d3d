package services

import (
	"encoding/json"

	"go.uber.org/zap"
)

// EventPublisher publishes store events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// publishEvent marshals payload and publishes it. Failures are logged and
// never fail the calling operation.
func publishEvent(events EventPublisher, logger *zap.Logger, routingKey string, payload any) {
	if events == nil {
		logger.Debug("Event publisher not configured, skipping event", zap.String("routing_key", routingKey))
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("Failed to marshal event", zap.String("routing_key", routingKey), zap.Error(err))
		return
	}
	if err := events.Publish(routingKey, body); err != nil {
		logger.Warn("Failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
