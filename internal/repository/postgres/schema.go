package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // registers the "postgres" driver
)

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email             TEXT NOT NULL,
		first_name        TEXT NOT NULL DEFAULT '',
		last_name         TEXT NOT NULL DEFAULT '',
		event_api_id      TEXT NOT NULL,
		status            TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'code_sent', 'signed_in', 'completed', 'failed')),
		verification_code TEXT,
		luma_response     JSONB,
		error_message     TEXT,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS registrations_created_at_idx ON registrations (created_at DESC)`,
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, mapError(fmt.Errorf("ping database: %w", err))
	}
	return db, nil
}

// EnsureSchema creates the registrations table and its index if they don't exist.
func EnsureSchema(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", mapError(err))
		}
	}
	logger.Info("database schema ready", "table", "registrations")
	return nil
}
