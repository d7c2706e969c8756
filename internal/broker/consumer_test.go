// internal/broker/consumer_test.go
package broker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"intake-service/internal/common/config"
	"intake-service/internal/common/logger"
	"intake-service/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func testBrokerConfig() config.BrokerConfig {
	return config.BrokerConfig{
		Topic:        "applications",
		Group:        "new_application_subscribers",
		ConsumerName: "consumer-test",
		BlockTimeout: 50,
	}
}

func newStreamClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// eventRecorder collects events delivered to the handler.
type eventRecorder struct {
	mu     sync.Mutex
	events []*models.ApplicationEvent
	err    error
}

func (r *eventRecorder) handle(ctx context.Context, event *models.ApplicationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *eventRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *eventRecorder) first() *models.ApplicationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[0]
}

func pendingCount(t *testing.T, client *redis.Client, cfg config.BrokerConfig) int64 {
	t.Helper()
	pending, err := client.XPending(context.Background(), cfg.Topic, cfg.Group).Result()
	if err != nil {
		return -1
	}
	return pending.Count
}

// ==========================
// Consumer Group Tests
// ==========================

func TestConsumer_EnsureGroup_Idempotent(t *testing.T) {
	client := newStreamClient(t)
	cfg := testBrokerConfig()
	consumer := NewConsumer(client, cfg, nil, logger.NewTestLogger(t))

	assert.NoError(t, consumer.EnsureGroup(context.Background()))
	// Second creation hits BUSYGROUP and must be tolerated.
	assert.NoError(t, consumer.EnsureGroup(context.Background()))
}

// ==========================
// Delivery Tests
// ==========================

func TestConsumer_ReceivesPublishedEvent(t *testing.T) {
	client := newStreamClient(t)
	cfg := testBrokerConfig()
	recorder := &eventRecorder{}
	consumer := NewConsumer(client, cfg, recorder.handle, logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.NoError(t, consumer.EnsureGroup(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = consumer.Run(ctx)
	}()

	publisher := NewPublisher(client, logger.NewTestLogger(t))
	event := &models.ApplicationEvent{
		ID:          1,
		UserName:    "ivanov",
		Description: "Test description",
		CreatedAt:   "2025-11-17T10:30:00Z",
	}
	assert.NoError(t, publisher.Publish(ctx, cfg.Topic, event))

	assert.Eventually(t, func() bool {
		return recorder.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	got := recorder.first()
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "ivanov", got.UserName)
	assert.Equal(t, "Test description", got.Description)
	assert.Equal(t, "2025-11-17T10:30:00Z", got.CreatedAt)

	// The entry must be acknowledged once handled.
	assert.Eventually(t, func() bool {
		return pendingCount(t, client, cfg) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestConsumer_AcksDespiteHandlerError(t *testing.T) {
	client := newStreamClient(t)
	cfg := testBrokerConfig()
	recorder := &eventRecorder{err: fmt.Errorf("smtp unavailable")}
	consumer := NewConsumer(client, cfg, recorder.handle, logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.NoError(t, consumer.EnsureGroup(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = consumer.Run(ctx)
	}()

	publisher := NewPublisher(client, logger.NewTestLogger(t))
	assert.NoError(t, publisher.Publish(ctx, cfg.Topic, &models.ApplicationEvent{
		ID:       2,
		UserName: "petrov",
	}))

	assert.Eventually(t, func() bool {
		return recorder.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Handler failure never blocks acknowledgment.
	assert.Eventually(t, func() bool {
		return pendingCount(t, client, cfg) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestConsumer_AcksMalformedPayload(t *testing.T) {
	client := newStreamClient(t)
	cfg := testBrokerConfig()
	recorder := &eventRecorder{}
	consumer := NewConsumer(client, cfg, recorder.handle, logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.NoError(t, consumer.EnsureGroup(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = consumer.Run(ctx)
	}()

	err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: cfg.Topic,
		Values: map[string]interface{}{PayloadField: "not json"},
	}).Err()
	assert.NoError(t, err)

	publisher := NewPublisher(client, logger.NewTestLogger(t))
	assert.NoError(t, publisher.Publish(ctx, cfg.Topic, &models.ApplicationEvent{
		ID:       3,
		UserName: "sidorov",
	}))

	// Entries are delivered in order, so once the valid event reaches the
	// handler the poison entry before it has been processed. It must be acked
	// without reaching the handler.
	assert.Eventually(t, func() bool {
		return recorder.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(3), recorder.first().ID)

	assert.Eventually(t, func() bool {
		return pendingCount(t, client, cfg) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestConsumer_StopsOnContextCancel(t *testing.T) {
	client := newStreamClient(t)
	cfg := testBrokerConfig()
	consumer := NewConsumer(client, cfg, nil, logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	assert.NoError(t, consumer.EnsureGroup(ctx))

	done := make(chan error, 1)
	go func() {
		done <- consumer.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after context cancellation")
	}
}
