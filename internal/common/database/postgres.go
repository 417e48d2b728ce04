// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"social-support-wizard/internal/common/config"

	_ "github.com/lib/pq"
)

// ApplicationsDDL creates the tables written by the record submitter.
const ApplicationsDDL = `
CREATE TABLE IF NOT EXISTS applications (
	id             TEXT PRIMARY KEY,
	national_id    TEXT NOT NULL,
	applicant_name TEXT NOT NULL,
	email          TEXT NOT NULL,
	status         TEXT NOT NULL,
	payload        JSONB NOT NULL,
	submitted_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS audit_log (
	id          TEXT PRIMARY KEY,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	action      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);`

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// EnsureSchema creates the application tables when they do not exist yet.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, ApplicationsDDL); err != nil {
		return fmt.Errorf("create application tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
