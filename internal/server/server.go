// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"intake-service/internal/common/config"
	"intake-service/internal/common/logger"
	"intake-service/internal/common/metrics"
	"intake-service/internal/common/observability"
	"intake-service/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ApplicationRepository is the storage surface the HTTP layer depends on.
type ApplicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	Create(ctx context.Context, userName, description string) (*models.Application, error)
}

// EventPublisher is the notification surface the HTTP layer depends on.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *models.ApplicationEvent) error
}

type server struct {
	logger    logger.Logger
	repo      ApplicationRepository
	publisher EventPublisher
	obs       *observability.Observability
	topic     string
	appName   string
}

func NewServer(log logger.Logger, repo ApplicationRepository, publisher EventPublisher, obs *observability.Observability, topic, appName string) *server {
	return &server{
		logger:    log.WithFields(map[string]interface{}{"component": "http"}),
		repo:      repo,
		publisher: publisher,
		obs:       obs,
		topic:     topic,
		appName:   appName,
	}
}

// Server builds the http.Server around the router.
func (s *server) Server(cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.routes(),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
}

func (s *server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.metricsMiddleware)

	r.Get("/", s.handleRoot)
	r.Get("/applications", s.handleListApplications)
	r.Post("/applications", s.handleCreateApplication)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"message": s.appName})
}

func (s *server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		elapsed := time.Since(start)
		status := strconv.Itoa(ww.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())
		s.obs.RecordRequest(r.Context(), r.Method+" "+route, status)
		s.obs.RecordDuration(r.Context(), r.Method+" "+route, float64(elapsed.Milliseconds()))
	})
}
