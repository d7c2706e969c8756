// internal/repository/schema.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
)

const applicationsDDL = `
CREATE TABLE IF NOT EXISTS applications (
	id          BIGSERIAL PRIMARY KEY,
	user_name   TEXT        NOT NULL,
	description TEXT        NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_applications_user_name ON applications (user_name);
CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications (created_at DESC);
`

// EnsureSchema applies the applications table DDL at process start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, applicationsDDL); err != nil {
		return fmt.Errorf("apply applications schema: %w", err)
	}
	return nil
}
