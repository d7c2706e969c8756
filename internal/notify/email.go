// internal/notify/email.go
package notify

import (
	"context"
	"fmt"
	"strings"

	commonerrors "intake-service/internal/common/errors"
	"intake-service/internal/common/logger"
	"intake-service/internal/common/metrics"
	"intake-service/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"
)

// SESService is the SES surface used by the notifier, defined for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Config holds the fixed addressing for consumer-side notifications.
type Config struct {
	FromEmail string
	ToEmail   string
	AWSRegion string
}

// EmailNotifier sends a fixed-template email for each consumed application
// event. Failures are reported to the caller, which logs and swallows them;
// they never affect message acknowledgment.
type EmailNotifier struct {
	config    Config
	sesClient SESService
	logger    logger.Logger
}

func NewEmailNotifier(ctx context.Context, cfg Config, log logger.Logger) (*EmailNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &EmailNotifier{
		config:    cfg,
		sesClient: ses.NewFromConfig(awsCfg),
		logger:    log.WithFields(map[string]interface{}{"component": "email-notifier"}),
	}, nil
}

// NewEmailNotifierWithClient injects an SES client, used by tests.
func NewEmailNotifierWithClient(cfg Config, client SESService, log logger.Logger) *EmailNotifier {
	return &EmailNotifier{
		config:    cfg,
		sesClient: client,
		logger:    log.WithFields(map[string]interface{}{"component": "email-notifier"}),
	}
}

var newApplicationTemplate = map[string]string{
	"subject": "New Application Received",
	"body":    "A new application {{id}} from {{userName}} was received at {{createdAt}}.\n\nDescription: {{description}}",
}

// NotifyNewApplication composes and sends the new-application email.
func (n *EmailNotifier) NotifyNewApplication(ctx context.Context, event *models.ApplicationEvent) error {
	data := map[string]interface{}{
		"id":          event.ID,
		"userName":    event.UserName,
		"description": event.Description,
		"createdAt":   event.CreatedAt,
	}

	subject := renderTemplate(newApplicationTemplate["subject"], data)
	body := renderTemplate(newApplicationTemplate["body"], data)
	notificationID := uuid.New().String()

	if err := n.sendEmail(ctx, subject, body); err != nil {
		metrics.EmailFailures.Inc()
		return commonerrors.NewEmailSendFailedError(err)
	}

	metrics.EmailsSent.Inc()
	n.logger.Info("notification email sent", map[string]interface{}{
		"notificationId": notificationID,
		"applicationId":  event.ID,
		"to":             n.config.ToEmail,
	})
	return nil
}

func (n *EmailNotifier) sendEmail(ctx context.Context, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{n.config.ToEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

// renderTemplate replaces {{key}} placeholders and strips any that remain.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
