// Package credentials is the typed view of the persisted key-value store.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tesnim/internal/domain"
)

// ErrIncompletePair is returned when saving a pair with an empty half.
var ErrIncompletePair = errors.New("credentials: token pair must have both tokens")

// Store reads and writes credentials and store slices.
type Store struct {
	kv domain.KVStore
}

// New wraps kv.
func New(kv domain.KVStore) *Store {
	return &Store{kv: kv}
}

// Tokens returns the stored pair. Missing tokens come back empty.
func (s *Store) Tokens(ctx context.Context) (domain.TokenPair, error) {
	var pair domain.TokenPair
	access, _, err := s.kv.Get(ctx, domain.KeyAccessToken)
	if err != nil {
		return pair, fmt.Errorf("read access token: %w", err)
	}
	refresh, _, err := s.kv.Get(ctx, domain.KeyRefreshToken)
	if err != nil {
		return pair, fmt.Errorf("read refresh token: %w", err)
	}
	pair.AccessToken = access
	pair.RefreshToken = refresh
	return pair, nil
}

// AccessToken returns the stored access token or "".
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	v, _, err := s.kv.Get(ctx, domain.KeyAccessToken)
	return v, err
}

// SaveTokens writes both tokens in one step so no reader sees a mixed pair.
func (s *Store) SaveTokens(ctx context.Context, pair domain.TokenPair) error {
	if !pair.Complete() {
		return ErrIncompletePair
	}
	return s.kv.SetMany(ctx, map[string]string{
		domain.KeyAccessToken:  pair.AccessToken,
		domain.KeyRefreshToken: pair.RefreshToken,
	})
}

// User returns the stored user, or nil when none is stored.
func (s *Store) User(ctx context.Context) (*domain.User, error) {
	raw, ok, err := s.kv.Get(ctx, domain.KeyUser)
	if err != nil || !ok || raw == "" {
		return nil, err
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// SaveUser stores u; nil removes it.
func (s *Store) SaveUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return s.kv.Delete(ctx, domain.KeyUser)
	}
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, domain.KeyUser, string(b))
}

// SaveLogin persists the pair, the user and the session slice together.
func (s *Store) SaveLogin(ctx context.Context, sess domain.Session) error {
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		return ErrIncompletePair
	}
	values := map[string]string{
		domain.KeyAccessToken:  sess.AccessToken,
		domain.KeyRefreshToken: sess.RefreshToken,
	}
	if sess.User != nil {
		b, err := json.Marshal(sess.User)
		if err != nil {
			return err
		}
		values[domain.KeyUser] = string(b)
	}
	slice, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	values[domain.KeyAuthSlice] = string(slice)
	return s.kv.SetMany(ctx, values)
}

// Clear removes tokens, user and the session slice.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, domain.KeyAccessToken, domain.KeyRefreshToken, domain.KeyUser, domain.KeyAuthSlice)
}

// MarkLogin records the time of the last successful login.
func (s *Store) MarkLogin(ctx context.Context, t time.Time) error {
	return s.kv.Set(ctx, domain.KeyLastLogin, t.UTC().Format(time.RFC3339))
}

// LastLogin returns the recorded login time, zero if none.
func (s *Store) LastLogin(ctx context.Context) (time.Time, error) {
	raw, ok, err := s.kv.Get(ctx, domain.KeyLastLogin)
	if err != nil || !ok {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, raw)
}

// LoadSlice decodes the JSON stored at key into dst and reports whether
// anything was stored.
func (s *Store) LoadSlice(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok || raw == "" {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveSlice stores v as JSON at key.
func (s *Store) SaveSlice(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(b))
}
