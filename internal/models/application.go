// internal/models/application.go
package models

import "time"

// Field bounds enforced on validated paths.
const (
	UserNameMaxLength    = 100
	DescriptionMaxLength = 1000
)

// Application is the sole persisted entity: a user-submitted request record.
// id and created_at are assigned by the storage layer; rows are never updated
// or deleted.
type Application struct {
	ID          int64     `json:"id"`
	UserName    string    `json:"user_name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ApplicationEvent is the point-in-time snapshot published to the notification
// topic after a successful create. It is derived, never stored.
type ApplicationEvent struct {
	ID          int64  `json:"id"`
	UserName    string `json:"user_name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"` // RFC 3339
}

// NewApplicationEvent builds the event snapshot from an authoritative row.
func NewApplicationEvent(app *Application) *ApplicationEvent {
	return &ApplicationEvent{
		ID:          app.ID,
		UserName:    app.UserName,
		Description: app.Description,
		CreatedAt:   app.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateApplicationRequest is the POST /applications body.
type CreateApplicationRequest struct {
	UserName    string `json:"user_name"`
	Description string `json:"description"`
}

// ApplicationFilter carries list query parameters.
type ApplicationFilter struct {
	UserName string
	Page     int
	Size     int
}

// ApplicationListResponse is the paginated GET /applications body.
type ApplicationListResponse struct {
	Items []Application `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
	Pages int           `json:"pages"`
}
