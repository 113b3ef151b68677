// Package memory implements in-memory repositories for development and testing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tesnim/internal/domain"
)

// DB implements the backend repositories in memory.
type DB struct {
	mu       sync.Mutex
	accounts []*domain.Account
	tokens   map[string]domain.TokenRecord
	settings map[string]domain.TimerSettings
	sessions map[string][]domain.FocusSession
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		tokens:   make(map[string]domain.TokenRecord),
		settings: make(map[string]domain.TimerSettings),
		sessions: make(map[string][]domain.FocusSession),
	}
}

// Ensure interfaces are met.
var _ domain.AccountRepository = (*DB)(nil)
var _ domain.TokenRepository = (*TokenRepo)(nil)
var _ domain.TimerRepository = (*DB)(nil)

// --- AccountRepository ---

// GetByEmail retrieves an account by email, ignoring case.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, a := range db.accounts {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetByID retrieves an account by id.
func (db *DB) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, a := range db.accounts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Create stores a new account. Emails are unique.
func (db *DB) Create(ctx context.Context, a *domain.Account) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.accounts {
		if strings.EqualFold(u.Email, a.Email) {
			return domain.ErrConflict
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	cp := *a
	db.accounts = append(db.accounts, &cp)
	return nil
}

// Update replaces the stored account with the same id.
func (db *DB) Update(ctx context.Context, a *domain.Account) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, u := range db.accounts {
		if u.ID == a.ID {
			cp := *a
			db.accounts[i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

// Count returns the total number of accounts.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.accounts), nil
}

// --- TokenRepository ---

// TokenRepo implements token persistence.
type TokenRepo struct {
	db *DB
}

// NewTokenRepo creates a new token repository.
func (db *DB) NewTokenRepo() *TokenRepo {
	return &TokenRepo{db: db}
}

func tokenKey(kind domain.TokenKind, hash string) string {
	return string(kind) + ":" + hash
}

// Create stores an issued token.
func (r *TokenRepo) Create(ctx context.Context, rec domain.TokenRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.db.tokens[tokenKey(rec.Kind, rec.Hash)] = rec
	return nil
}

// Consume removes and returns a live token.
func (r *TokenRepo) Consume(ctx context.Context, kind domain.TokenKind, hash string, now time.Time) (*domain.TokenRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	key := tokenKey(kind, hash)
	rec, ok := r.db.tokens[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.db.tokens, key)
	if !now.Before(rec.ExpiresAt) {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// DeleteForUser revokes every token of kind issued to userID.
func (r *TokenRepo) DeleteForUser(ctx context.Context, kind domain.TokenKind, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for k, v := range r.db.tokens {
		if v.Kind == kind && v.UserID == userID {
			delete(r.db.tokens, k)
		}
	}
	return nil
}

// --- TimerRepository ---

// GetSettings returns the owner's settings or ErrNotFound.
func (db *DB) GetSettings(ctx context.Context, owner string) (*domain.TimerSettings, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.settings[owner]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

// SaveSettings replaces the owner's settings.
func (db *DB) SaveSettings(ctx context.Context, owner string, s domain.TimerSettings) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.settings[owner] = s
	return nil
}

// AddSession appends a finished session.
func (db *DB) AddSession(ctx context.Context, owner string, s domain.FocusSession) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sessions[owner] = append(db.sessions[owner], s)
	return nil
}

// ListSessions returns the owner's sessions, newest first.
func (db *DB) ListSessions(ctx context.Context, owner string) ([]domain.FocusSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.FocusSession, len(db.sessions[owner]))
	copy(result, db.sessions[owner])

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}
