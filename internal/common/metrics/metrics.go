// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "intake_http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route", "method"},
	)

	ApplicationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_applications_created_total",
			Help: "Total number of applications persisted",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_events_published_total",
			Help: "Total number of application events published to the topic",
		},
		[]string{"topic"},
	)

	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_event_publish_failures_total",
			Help: "Total number of application event publish failures",
		},
		[]string{"topic"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_events_consumed_total",
			Help: "Total number of application events consumed from the topic",
		},
		[]string{"topic", "group"},
	)

	EmailsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_notification_emails_sent_total",
			Help: "Total number of notification emails sent",
		},
	)

	EmailFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_notification_email_failures_total",
			Help: "Total number of notification email failures",
		},
	)
)
