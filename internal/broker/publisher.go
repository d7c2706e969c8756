// internal/broker/publisher.go
package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"intake-service/internal/common/errors"
	"intake-service/internal/common/logger"
	"intake-service/internal/common/metrics"
	"intake-service/internal/models"

	"github.com/redis/go-redis/v9"
)

// PayloadField is the stream entry field carrying the JSON-serialized event.
const PayloadField = "payload"

// Publisher serializes application event snapshots and hands them to the
// broker for asynchronous delivery. Each Publish call is independent: no
// buffering, no batching, no retries.
type Publisher struct {
	client *redis.Client
	logger logger.Logger
}

func NewPublisher(client *redis.Client, log logger.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "publisher"}),
	}
}

// Publish appends one event to the topic stream with default routing.
func (p *Publisher) Publish(ctx context.Context, topic string, event *models.ApplicationEvent) error {
	if topic == "" {
		return errors.NewEventPublishFailedError(topic, fmt.Errorf("topic must not be empty"))
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.NewEventPublishFailedError(topic, fmt.Errorf("marshal event: %w", err))
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{PayloadField: string(payload)},
	}).Err()
	if err != nil {
		metrics.EventPublishFailures.WithLabelValues(topic).Inc()
		return errors.NewEventPublishFailedError(topic, err)
	}

	metrics.EventsPublished.WithLabelValues(topic).Inc()
	p.logger.Info("event published", map[string]interface{}{
		"applicationId": event.ID,
		"topic":         topic,
	})
	return nil
}
