// internal/server/errors.go
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"intake-service/internal/common/errors"
)

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// respondError normalizes err to a StandardError, logs it, and writes the
// mapped HTTP response. Validation failures are the caller's fault; all
// other codes are server errors.
func (s *server) respondError(w http.ResponseWriter, err error) {
	stdErr := normalizeError(err)

	status := http.StatusInternalServerError
	if stdErr.Code == errors.ErrCodeValidationFailed {
		status = http.StatusBadRequest
	}

	s.logger.Error("request failed", map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": errors.GetErrorCategory(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
	})

	detail := errorDetail{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
	}
	if status == http.StatusBadRequest {
		// Constraint descriptions are client-actionable; storage internals
		// are not.
		detail.Details = stdErr.Details
	}
	jsonResponse(w, status, errorResponse{Error: detail})
}

// normalizeError ensures we always have a StandardError
func normalizeError(err error) *errors.StandardError {
	if stdErr, ok := errors.AsStandardError(err); ok {
		return stdErr
	}
	return &errors.StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func jsonResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
