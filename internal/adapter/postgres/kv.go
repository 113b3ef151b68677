package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"tesnim/internal/domain"
)

var _ domain.KVStore = (*KV)(nil)

// KV is a domain.KVStore backed by the kv table.
type KV struct {
	db *DB
}

// KV returns the key-value store of d.
func (d *DB) KV() *KV { return &KV{db: d} }

const upsertKV = `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

// Get returns the value stored under key.
func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.sql.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = $1", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores one value.
func (s *KV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.sql.ExecContext(ctx, upsertKV, key, value)
	return err
}

// SetMany stores every pair in one transaction.
func (s *KV) SetMany(ctx context.Context, values map[string]string) error {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertKV)
	if err != nil {
		return err
	}
	defer stmt.Close() //nolint:errcheck

	for k, v := range values {
		if _, err := stmt.ExecContext(ctx, k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// Delete removes the keys.
func (s *KV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.sql.ExecContext(ctx, "DELETE FROM kv WHERE key = ANY($1)", pq.Array(keys))
	return err
}
