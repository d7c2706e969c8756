// internal/server/validation.go
package server

import (
	"encoding/json"
	"strings"

	"intake-service/internal/common/errors"
	"intake-service/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// createApplicationSchema bounds the POST /applications body. Lengths match
// the validated-path limits on the stored columns.
const createApplicationSchema = `{
	"type": "object",
	"properties": {
		"user_name":   {"type": "string", "minLength": 1, "maxLength": 100},
		"description": {"type": "string", "minLength": 1, "maxLength": 1000}
	},
	"required": ["user_name", "description"]
}`

var createSchema = gojsonschema.NewStringLoader(createApplicationSchema)

// validateCreateRequest checks the raw body against the schema before any
// side effect and decodes it on success.
func validateCreateRequest(body []byte) (*models.CreateApplicationRequest, error) {
	result, err := gojsonschema.Validate(createSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, commonValidationError("request body must be a JSON object")
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, commonValidationError(strings.Join(details, "; "))
	}

	var req models.CreateApplicationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, commonValidationError("request body must be a JSON object")
	}
	return &req, nil
}

func commonValidationError(details string) error {
	return errors.NewValidationFailedError(details)
}
