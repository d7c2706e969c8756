// internal/broker/consumer.go
package broker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"intake-service/internal/common/config"
	"intake-service/internal/common/errors"
	"intake-service/internal/common/logger"
	"intake-service/internal/common/metrics"
	"intake-service/internal/models"

	"github.com/redis/go-redis/v9"
)

// Handler processes one consumed application event. A handler error is
// logged and swallowed; it never blocks acknowledgment.
type Handler func(ctx context.Context, event *models.ApplicationEvent) error

// Consumer is a consumer-group member on the notification topic. Delivery is
// at-least-once per the broker's semantics; entries are acknowledged
// unconditionally after the handler runs, whatever its outcome. The consumer
// never writes back to storage.
type Consumer struct {
	client  *redis.Client
	topic   string
	group   string
	name    string
	block   time.Duration
	handler Handler
	logger  logger.Logger
}

func NewConsumer(client *redis.Client, cfg config.BrokerConfig, handler Handler, log logger.Logger) *Consumer {
	return &Consumer{
		client:  client,
		topic:   cfg.Topic,
		group:   cfg.Group,
		name:    cfg.ConsumerName,
		block:   config.GetDuration(cfg.BlockTimeout),
		handler: handler,
		logger: log.WithFields(map[string]interface{}{
			"component": "consumer",
			"topic":     cfg.Topic,
			"group":     cfg.Group,
		}),
	}
}

// EnsureGroup creates the consumer group (and stream) if missing.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.topic, c.group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Run blocks reading the topic until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started", map[string]interface{}{"consumer": c.name})

	for {
		if ctx.Err() != nil {
			return nil
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.name,
			Streams:  []string{c.topic, ">"},
			Count:    10,
			Block:    c.block,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue // block timeout, nothing pending
			}
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("read from topic failed", map[string]interface{}{"error": err})
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				c.process(ctx, msg)
				if err := c.client.XAck(ctx, c.topic, c.group, msg.ID).Err(); err != nil {
					c.logger.Error("ack failed", map[string]interface{}{
						"error":     err,
						"messageId": msg.ID,
					})
				}
			}
		}
	}
}

// process decodes and handles one entry. Ack happens in the caller
// regardless of the outcome here.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	metrics.EventsConsumed.WithLabelValues(c.topic, c.group).Inc()

	payload, ok := msg.Values[PayloadField].(string)
	if !ok {
		c.logger.Error("message has no payload field", map[string]interface{}{
			"messageId": msg.ID,
		})
		return
	}

	var event models.ApplicationEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		decodeErr := errors.NewEventDecodeFailedError(err)
		c.logger.Error("event decode failed", map[string]interface{}{
			"error":     decodeErr,
			"messageId": msg.ID,
		})
		return
	}

	c.logger.Info("new application received", map[string]interface{}{
		"applicationId": event.ID,
		"userName":      event.UserName,
		"messageId":     msg.ID,
	})

	if c.handler != nil {
		if err := c.handler(ctx, &event); err != nil {
			c.logger.Error("event handler failed", map[string]interface{}{
				"error":         err,
				"applicationId": event.ID,
			})
		}
	}
}
