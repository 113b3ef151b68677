package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tesnim/internal/domain"
)

var (
	_ domain.ResourceRepository[domain.Task] = (*Table[domain.Task])(nil)
	_ domain.TimerRepository                 = (*DB)(nil)
)

// Table stores entities of one kind as JSON documents, scoped per owner.
type Table[T domain.Entity] struct {
	db   *DB
	kind string
}

// NewTable returns the table for kind.
func NewTable[T domain.Entity](db *DB, kind string) *Table[T] {
	return &Table[T]{db: db, kind: kind}
}

// List returns the owner's entities in insertion order.
func (t *Table[T]) List(ctx context.Context, owner string) ([]T, error) {
	rows, err := t.db.sql.QueryContext(ctx,
		"SELECT data FROM resources WHERE owner = $1 AND kind = $2 ORDER BY seq", owner, t.kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	items := []T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t.kind, err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// Get returns one entity.
func (t *Table[T]) Get(ctx context.Context, owner, id string) (T, error) {
	var v T
	var raw []byte
	err := t.db.sql.QueryRowContext(ctx,
		"SELECT data FROM resources WHERE owner = $1 AND kind = $2 AND id = $3", owner, t.kind, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return v, domain.ErrNotFound
	}
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", t.kind, err)
	}
	return v, nil
}

// Put inserts v or replaces the entity with the same id.
func (t *Table[T]) Put(ctx context.Context, owner string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = t.db.sql.ExecContext(ctx,
		`INSERT INTO resources (owner, kind, id, data) VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner, kind, id) DO UPDATE SET data = EXCLUDED.data`,
		owner, t.kind, v.EntityID(), raw)
	return err
}

// Delete removes one entity.
func (t *Table[T]) Delete(ctx context.Context, owner, id string) error {
	res, err := t.db.sql.ExecContext(ctx,
		"DELETE FROM resources WHERE owner = $1 AND kind = $2 AND id = $3", owner, t.kind, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetSettings returns the owner's timer settings or ErrNotFound.
func (d *DB) GetSettings(ctx context.Context, owner string) (*domain.TimerSettings, error) {
	var raw []byte
	err := d.sql.QueryRowContext(ctx, "SELECT data FROM timer_settings WHERE owner = $1", owner).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s domain.TimerSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode timer settings: %w", err)
	}
	return &s, nil
}

// SaveSettings replaces the owner's timer settings.
func (d *DB) SaveSettings(ctx context.Context, owner string, s domain.TimerSettings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO timer_settings (owner, data) VALUES ($1, $2)
		ON CONFLICT (owner) DO UPDATE SET data = EXCLUDED.data`, owner, raw)
	return err
}

// AddSession records a finished focus session.
func (d *DB) AddSession(ctx context.Context, owner string, s domain.FocusSession) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO focus_sessions (owner, duration, completed, created_at) VALUES ($1, $2, $3, $4)",
		owner, s.Duration, s.Completed, s.Timestamp)
	return err
}

// ListSessions returns the owner's sessions, newest first.
func (d *DB) ListSessions(ctx context.Context, owner string) ([]domain.FocusSession, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT duration, completed, created_at FROM focus_sessions WHERE owner = $1 ORDER BY created_at DESC", owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.FocusSession
	for rows.Next() {
		var s domain.FocusSession
		if err := rows.Scan(&s.Duration, &s.Completed, &s.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
