// Package audit publishes user-action events to a queue; a worker drains
// the queue into the logging_logs table.
package audit

import (
	"context"
	"time"
)

// Actions recorded by the API.
const (
	ActionLoginSuccess       = "login_success"
	ActionLoginFailed        = "login_failed"
	ActionAttendanceRecorded = "attendance_recorded"
	ActionClassDeleted       = "delete_class"
)

// Event is one auditable user action.
type Event struct {
	Username string         `json:"username"`
	Role     string         `json:"role"`
	Action   string         `json:"action"`
	Details  map[string]any `json:"details,omitempty"`
	At       time.Time      `json:"at"`
}

// Queue is the transport between the API and the audit worker.
type Queue interface {
	Publish(ctx context.Context, evt Event) error
	Consume(ctx context.Context) (<-chan Event, error)
}
