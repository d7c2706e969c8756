// internal/models/application_test.go
package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewApplicationEvent(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	app := &Application{
		ID:          7,
		UserName:    "ivanov",
		Description: "Test description",
		CreatedAt:   time.Date(2025, 11, 17, 13, 30, 0, 0, loc),
	}

	event := NewApplicationEvent(app)

	assert.Equal(t, int64(7), event.ID)
	assert.Equal(t, "ivanov", event.UserName)
	assert.Equal(t, "Test description", event.Description)
	// Timestamps are normalized to UTC on the wire.
	assert.Equal(t, "2025-11-17T10:30:00Z", event.CreatedAt)
}

func TestApplicationEvent_WireFormat(t *testing.T) {
	event := &ApplicationEvent{
		ID:          3,
		UserName:    "sidorov",
		Description: "Тестовая заявка",
		CreatedAt:   "2025-11-17T10:30:00Z",
	}

	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, float64(3), decoded["id"])
	assert.Equal(t, "sidorov", decoded["user_name"])
	assert.Equal(t, "Тестовая заявка", decoded["description"])
	assert.Equal(t, "2025-11-17T10:30:00Z", decoded["created_at"])
}
