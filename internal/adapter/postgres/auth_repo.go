package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tesnim/internal/domain"
)

var (
	_ domain.AccountRepository = (*DB)(nil)
	_ domain.TokenRepository   = (*TokenRepo)(nil)
)

const accountColumns = "id, email, first_name, last_name, role, plan, email_verified, password_hash, created_at"

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Email, &a.FirstName, &a.LastName, &a.Role, &a.Plan, &a.IsEmailVerified, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByEmail retrieves an account by email, ignoring case.
func (d *DB) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return scanAccount(d.sql.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE lower(email) = lower($1)", email))
}

// GetByID retrieves an account by id.
func (d *DB) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return scanAccount(d.sql.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", id))
}

// Create inserts a new account.
func (d *DB) Create(ctx context.Context, a *domain.Account) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO accounts ("+accountColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		a.ID, a.Email, a.FirstName, a.LastName, a.Role, a.Plan, a.IsEmailVerified, a.PasswordHash, a.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// Update replaces the mutable fields of an account.
func (d *DB) Update(ctx context.Context, a *domain.Account) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE accounts SET email = $2, first_name = $3, last_name = $4, role = $5, plan = $6,
			email_verified = $7, password_hash = $8 WHERE id = $1`,
		a.ID, a.Email, a.FirstName, a.LastName, a.Role, a.Plan, a.IsEmailVerified, a.PasswordHash,
	)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the total number of accounts.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(1) FROM accounts").Scan(&n)
	return n, err
}

// TokenRepo stores issued opaque tokens.
type TokenRepo struct {
	db *DB
}

// NewTokenRepo returns the token repository of d.
func (d *DB) NewTokenRepo() *TokenRepo { return &TokenRepo{db: d} }

// Create stores an issued token.
func (r *TokenRepo) Create(ctx context.Context, rec domain.TokenRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO tokens (kind, hash, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)",
		string(rec.Kind), rec.Hash, rec.UserID, rec.ExpiresAt, rec.CreatedAt,
	)
	return err
}

// Consume deletes the token and returns it if it was still live.
func (r *TokenRepo) Consume(ctx context.Context, kind domain.TokenKind, hash string, now time.Time) (*domain.TokenRecord, error) {
	rec := domain.TokenRecord{Kind: kind, Hash: hash}
	err := r.db.sql.QueryRowContext(ctx,
		"DELETE FROM tokens WHERE kind = $1 AND hash = $2 RETURNING user_id, expires_at, created_at",
		string(kind), hash,
	).Scan(&rec.UserID, &rec.ExpiresAt, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !now.Before(rec.ExpiresAt) {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// DeleteForUser revokes every token of kind issued to userID.
func (r *TokenRepo) DeleteForUser(ctx context.Context, kind domain.TokenKind, userID string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM tokens WHERE kind = $1 AND user_id = $2", string(kind), userID)
	return err
}
