// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// Role values assigned by the backend.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// PlanFreemium is the plan given to new accounts.
const PlanFreemium = "freemium"

// User represents an authenticated user as exposed by the API.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Role            string `json:"role"`
	Plan            string `json:"plan"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

// TokenPair is a short-lived access token and the refresh token that renews it.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether both halves of the pair are present.
func (p TokenPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// AuthResponse is returned by login, registration and SSO.
type AuthResponse struct {
	Success      bool   `json:"success"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}

// Tokens returns the pair carried by the response.
func (r AuthResponse) Tokens() TokenPair {
	return TokenPair{AccessToken: r.Token, RefreshToken: r.RefreshToken}
}

// Session is the persisted authentication slice of the client.
type Session struct {
	User         *User     `json:"user,omitempty"`
	AccessToken  string    `json:"token,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"tokenExpiry"`
}

// Expired reports whether the session expiry has passed at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RecaptchaToken string `json:"recaptchaToken"`
}

// KVStore is the port for the durable key-value store that survives restarts.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes every pair or none of them.
	SetMany(ctx context.Context, values map[string]string) error
	// Delete removes the keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Persisted keys.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeyLastLogin    = "tesnim_lastLogin"
	KeyAuthSlice    = "tesnim-auth"
	KeyTasksSlice   = "tesnim-tasks"
	KeyCalendar     = "tesnim-calendar"
	KeyTimerSlice   = "tesnim-timer-storage"
)
