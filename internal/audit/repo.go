package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Repository writes audit events to Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertLog persists one event.
func (r *Repository) InsertLog(ctx context.Context, evt Event) error {
	details := evt.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO logging_logs (username, role, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, evt.Username, evt.Role, evt.Action, raw, evt.At)
	return err
}
