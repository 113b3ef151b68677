// Package postgres implements the key-value store and the backend
// repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TIMESTAMPTZ NOT NULL DEFAULT now());",
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			plan TEXT NOT NULL,
			email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			password_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL);`,
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_email ON accounts(lower(email));",
		`CREATE TABLE IF NOT EXISTS tokens (
			kind TEXT NOT NULL,
			hash TEXT NOT NULL,
			user_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (kind, hash));`,
		"CREATE INDEX IF NOT EXISTS idx_tokens_user ON tokens(user_id, kind);",
		`CREATE TABLE IF NOT EXISTS resources (
			seq BIGSERIAL,
			owner TEXT NOT NULL,
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL,
			PRIMARY KEY (owner, kind, id));`,
		"CREATE INDEX IF NOT EXISTS idx_resources_seq ON resources(owner, kind, seq);",
		"CREATE TABLE IF NOT EXISTS timer_settings (owner TEXT PRIMARY KEY, data JSONB NOT NULL);",
		`CREATE TABLE IF NOT EXISTS focus_sessions (
			id BIGSERIAL PRIMARY KEY,
			owner TEXT NOT NULL,
			duration INTEGER NOT NULL,
			completed BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL);`,
		"CREATE INDEX IF NOT EXISTS idx_focus_sessions_owner ON focus_sessions(owner, created_at);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
