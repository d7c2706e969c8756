// internal/broker/publisher_test.go
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"intake-service/internal/common/errors"
	"intake-service/internal/common/logger"
	"intake-service/internal/models"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func testEvent() *models.ApplicationEvent {
	return &models.ApplicationEvent{
		ID:          3,
		UserName:    "sidorov",
		Description: "Тестовая заявка",
		CreatedAt:   "2025-11-17T10:30:00Z",
	}
}

func TestPublisher_Publish_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()
	event := testEvent()

	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: "applications",
		Values: map[string]interface{}{PayloadField: string(payload)},
	}).SetVal("1700000000000-0")

	publisher := NewPublisher(db, logger.NewTestLogger(t))

	err = publisher.Publish(context.Background(), "applications", event)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublisher_Publish_BrokerError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	event := testEvent()

	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: "applications",
		Values: map[string]interface{}{PayloadField: string(payload)},
	}).SetErr(fmt.Errorf("connection refused"))

	publisher := NewPublisher(db, logger.NewTestLogger(t))

	err = publisher.Publish(context.Background(), "applications", event)

	assert.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrCodeEventPublishFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublisher_Publish_EmptyTopic(t *testing.T) {
	db, mock := redismock.NewClientMock()

	publisher := NewPublisher(db, logger.NewTestLogger(t))

	err := publisher.Publish(context.Background(), "", testEvent())

	assert.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrCodeEventPublishFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
