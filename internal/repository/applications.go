// internal/repository/applications.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"intake-service/internal/common/errors"
	"intake-service/internal/common/logger"
	"intake-service/internal/models"
)

// Applications is the sole gateway to persisted application rows.
type Applications struct {
	db     *sql.DB
	logger logger.Logger
}

func NewApplications(db *sql.DB, log logger.Logger) *Applications {
	return &Applications{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "repository"}),
	}
}

// List returns one page of applications matching the filter plus the total
// count of matching rows ignoring pagination. Rows are ordered created_at
// descending with id descending as the deterministic tiebreak.
func (r *Applications) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	where := ""
	args := []interface{}{}
	if filter.UserName != "" {
		where = " WHERE user_name ILIKE '%' || $1 || '%'"
		args = append(args, filter.UserName)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM applications" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewDatabaseQueryFailedError(fmt.Errorf("count failed: %w", err))
	}

	offset := (filter.Page - 1) * filter.Size
	pageQuery := fmt.Sprintf(
		"SELECT id, user_name, description, created_at FROM applications%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Size, offset)

	rows, err := r.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, errors.NewDatabaseQueryFailedError(fmt.Errorf("page query failed: %w", err))
	}
	defer rows.Close()

	applications := []models.Application{}
	for rows.Next() {
		var app models.Application
		if err := rows.Scan(&app.ID, &app.UserName, &app.Description, &app.CreatedAt); err != nil {
			return nil, 0, errors.NewDatabaseQueryFailedError(fmt.Errorf("row scan failed: %w", err))
		}
		applications = append(applications, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewDatabaseQueryFailedError(err)
	}

	r.logger.Info("applications fetched", map[string]interface{}{
		"count": len(applications),
		"total": total,
		"page":  filter.Page,
	})

	return applications, total, nil
}

// Create inserts one application row inside a transaction and returns the
// fully materialized row with the server-assigned id and created_at. Either
// the row exists with all fields populated or nothing is persisted.
func (r *Applications) Create(ctx context.Context, userName, description string) (*models.Application, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(fmt.Errorf("begin transaction: %w", err))
	}

	app := models.Application{
		UserName:    userName,
		Description: description,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO applications (user_name, description)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		userName, description,
	).Scan(&app.ID, &app.CreatedAt)
	if err != nil {
		_ = tx.Rollback()
		return nil, errors.NewDatabaseInsertFailedError(fmt.Errorf("insert failed: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewDatabaseInsertFailedError(fmt.Errorf("commit failed: %w", err))
	}

	r.logger.Info("application record created", map[string]interface{}{
		"applicationId": app.ID,
		"userName":      app.UserName,
	})

	return &app, nil
}
