// internal/server/handlers.go
package server

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"intake-service/internal/common/metrics"
	"intake-service/internal/models"
)

// Fixed message returned when the list query fails; clients match on it.
const listApplicationsErrorMessage = "failed to fetch applications"

const (
	defaultPage = 1
	defaultSize = 10
	maxSize     = 100
)

func (s *server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	applications, total, err := s.repo.List(r.Context(), filter)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch applications", map[string]interface{}{
			"page":     filter.Page,
			"size":     filter.Size,
			"userName": filter.UserName,
		})
		jsonResponse(w, http.StatusInternalServerError, errorResponse{
			Error: errorDetail{
				Code:    "DATABASE_QUERY_FAILED",
				Message: listApplicationsErrorMessage,
			},
		})
		return
	}

	s.logger.Info("applications listed", map[string]interface{}{
		"count": len(applications),
		"total": total,
		"page":  filter.Page,
	})

	jsonResponse(w, http.StatusOK, models.ApplicationListResponse{
		Items: applications,
		Total: total,
		Page:  filter.Page,
		Size:  filter.Size,
		Pages: computePages(total, filter.Size),
	})
}

func (s *server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, commonValidationError("unreadable request body"))
		return
	}

	req, err := validateCreateRequest(body)
	if err != nil {
		s.respondError(w, err)
		return
	}

	app, err := s.repo.Create(r.Context(), req.UserName, req.Description)
	if err != nil {
		s.logger.WithError(err).Error("failed to create application", map[string]interface{}{
			"userName": req.UserName,
		})
		s.respondError(w, err)
		return
	}
	metrics.ApplicationsCreated.Inc()

	// The row is committed; publish is best effort and must never undo or
	// block the created response. A request-side cancellation must not reach
	// the publish either, hence the detached context.
	event := models.NewApplicationEvent(app)
	if err := s.publisher.Publish(context.WithoutCancel(r.Context()), s.topic, event); err != nil {
		s.logger.WithError(err).Error("failed to publish application event", map[string]interface{}{
			"applicationId": app.ID,
			"topic":         s.topic,
		})
	}

	jsonResponse(w, http.StatusCreated, app)
}

// parseListFilter validates query parameters against the documented bounds.
func parseListFilter(r *http.Request) (models.ApplicationFilter, error) {
	filter := models.ApplicationFilter{
		Page: defaultPage,
		Size: defaultSize,
	}

	q := r.URL.Query()

	if userName := q.Get("user_name"); userName != "" {
		if len(userName) > models.UserNameMaxLength {
			return filter, commonValidationError("user_name filter must be at most 100 characters")
		}
		filter.UserName = userName
	}

	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return filter, commonValidationError("page must be an integer >= 1")
		}
		filter.Page = page
	}

	sizeStr := q.Get("size")
	if sizeStr == "" {
		sizeStr = q.Get("page_size") // accepted alias
	}
	if sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 1 || size > maxSize {
			return filter, commonValidationError("size must be an integer between 1 and 100")
		}
		filter.Size = size
	}

	return filter, nil
}

// computePages returns ceil(total/size); total=0 yields 0 pages.
func computePages(total, size int) int {
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
