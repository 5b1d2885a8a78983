// Package store opens the shared Postgres and Redis handles the services
// build their repositories on.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB is the Postgres handle, driven through database/sql with the pgx
// driver.
type DB struct {
	Client *sql.DB
}

// NewDB opens a pooled connection and verifies it with a bounded ping. The
// handle is returned even when the ping fails, so a caller that tolerates a
// late-starting database can keep it and retry.
func NewDB(connString string) (*DB, error) {
	client, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	client.SetMaxOpenConns(10)
	client.SetMaxIdleConns(5)
	client.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.PingContext(ctx); err != nil {
		return &DB{Client: client}, fmt.Errorf("store: ping postgres: %w", err)
	}
	return &DB{Client: client}, nil
}

// Healthy reports whether the database answers a ping.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the pool.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
