// internal/notify/email_test.go
package notify

import (
	"context"
	"fmt"
	"testing"

	commonerrors "intake-service/internal/common/errors"
	"intake-service/internal/common/logger"
	"intake-service/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Doubles
// ==========================

type mockSESClient struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSESClient) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

func testNotifyConfig() Config {
	return Config{
		FromEmail: "noreply@example.com",
		ToEmail:   "ops@example.com",
		AWSRegion: "eu-central-1",
	}
}

// ==========================
// Notification Tests
// ==========================

func TestNotifyNewApplication_Success(t *testing.T) {
	client := &mockSESClient{}
	notifier := NewEmailNotifierWithClient(testNotifyConfig(), client, logger.NewTestLogger(t))

	event := &models.ApplicationEvent{
		ID:          1,
		UserName:    "ivanov",
		Description: "Test description",
		CreatedAt:   "2025-11-17T10:30:00Z",
	}

	err := notifier.NotifyNewApplication(context.Background(), event)

	assert.NoError(t, err)
	assert.Len(t, client.inputs, 1)

	input := client.inputs[0]
	assert.Equal(t, "noreply@example.com", *input.Source)
	assert.Equal(t, []string{"ops@example.com"}, input.Destination.ToAddresses)
	assert.Equal(t, "New Application Received", *input.Message.Subject.Data)

	body := *input.Message.Body.Text.Data
	assert.Contains(t, body, "1")
	assert.Contains(t, body, "ivanov")
	assert.Contains(t, body, "Test description")
	assert.Contains(t, body, "2025-11-17T10:30:00Z")
	assert.NotContains(t, body, "{{")
}

func TestNotifyNewApplication_SendFailure(t *testing.T) {
	client := &mockSESClient{err: fmt.Errorf("MessageRejected: address not verified")}
	notifier := NewEmailNotifierWithClient(testNotifyConfig(), client, logger.NewTestLogger(t))

	err := notifier.NotifyNewApplication(context.Background(), &models.ApplicationEvent{
		ID:       2,
		UserName: "petrov",
	})

	assert.Error(t, err)
	stdErr, ok := commonerrors.AsStandardError(err)
	assert.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeEmailSendFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "MessageRejected")
}

// ==========================
// Template Tests
// ==========================

func TestRenderTemplate(t *testing.T) {
	data := map[string]interface{}{
		"id":       int64(42),
		"userName": "sidorov",
	}

	result := renderTemplate("application {{id}} from {{userName}} {{unknown}}", data)

	assert.Equal(t, "application 42 from sidorov ", result)
}
