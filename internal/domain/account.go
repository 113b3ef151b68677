package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when no record matches.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique value is already taken.
	ErrConflict = errors.New("already exists")
)

// Account is the server-side record behind a User.
type Account struct {
	User
	PasswordHash string
	CreatedAt    time.Time
}

// TokenKind separates the one-time token families a backend issues.
type TokenKind string

const (
	TokenRefresh     TokenKind = "refresh"
	TokenVerifyEmail TokenKind = "verify_email"
	TokenReset       TokenKind = "reset_password"
)

// TokenRecord is an issued opaque token, stored by hash only.
type TokenRecord struct {
	Kind      TokenKind
	Hash      string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Entity is anything stored and addressed by a string id.
type Entity interface {
	EntityID() string
}

// AccountRepository defines the port for account persistence.
type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Update(ctx context.Context, a *Account) error
	Count(ctx context.Context) (int, error)
}

// TokenRepository defines the port for issued opaque tokens.
type TokenRepository interface {
	Create(ctx context.Context, rec TokenRecord) error
	// Consume removes and returns the record; it fails with ErrNotFound
	// when the hash is unknown, already used or expired.
	Consume(ctx context.Context, kind TokenKind, hash string, now time.Time) (*TokenRecord, error)
	DeleteForUser(ctx context.Context, kind TokenKind, userID string) error
}

// ResourceRepository stores entities of one kind, scoped per owner.
type ResourceRepository[T Entity] interface {
	List(ctx context.Context, owner string) ([]T, error)
	Get(ctx context.Context, owner, id string) (T, error)
	Put(ctx context.Context, owner string, v T) error
	Delete(ctx context.Context, owner, id string) error
}

// TimerRepository stores per-user timer settings and finished sessions.
type TimerRepository interface {
	GetSettings(ctx context.Context, owner string) (*TimerSettings, error)
	SaveSettings(ctx context.Context, owner string, s TimerSettings) error
	AddSession(ctx context.Context, owner string, s FocusSession) error
	ListSessions(ctx context.Context, owner string) ([]FocusSession, error)
}
