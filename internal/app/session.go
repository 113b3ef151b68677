package app

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"tesnim/internal/credentials"
	"tesnim/internal/domain"
)

// SessionTTL is how long a login is trusted before CheckAuth refreshes it.
const SessionTTL = 24 * time.Hour

// AuthAPI is the backend surface the session manager calls.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResponse, error)
	Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResponse, error)
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	VerifyEmail(ctx context.Context, token string) error
}

// FieldError attributes a failure to one form field.
type FieldError struct {
	Field   string
	Message string
}

// SessionState is a snapshot of the session manager.
type SessionState struct {
	User          *domain.User
	AccessToken   string
	RefreshToken  string
	TokenExpiry   time.Time
	Authenticated bool
	Loading       bool
	Initialized   bool
	Error         string
	FieldError    *FieldError
}

// SessionManager owns the authenticated session of the client.
type SessionManager struct {
	api   AuthAPI
	creds *credentials.Store
	now   func() time.Time

	mu    sync.Mutex
	state SessionState
}

// NewSessionManager creates a manager with no session loaded.
func NewSessionManager(api AuthAPI, creds *credentials.Store) *SessionManager {
	return &SessionManager{api: api, creds: creds, now: time.Now}
}

// SetClock replaces the time source.
func (m *SessionManager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// State returns a copy of the current state.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	if s.FieldError != nil {
		fe := *s.FieldError
		s.FieldError = &fe
	}
	return s
}

func (m *SessionManager) update(fn func(s *SessionState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.state)
}

func (m *SessionManager) clock() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now()
}

func (m *SessionManager) begin() {
	m.update(func(s *SessionState) {
		s.Loading = true
		s.Error = ""
		s.FieldError = nil
	})
}

func (m *SessionManager) fail(msg string, field *FieldError) {
	m.update(func(s *SessionState) {
		s.Loading = false
		s.Error = msg
		s.FieldError = field
	})
}

// Restore loads the persisted session slice.
func (m *SessionManager) Restore(ctx context.Context) error {
	var sess domain.Session
	ok, err := m.creds.LoadSlice(ctx, domain.KeyAuthSlice, &sess)
	if err != nil {
		log.Printf("[session] restore: %v", err)
	}
	now := m.clock()
	m.update(func(s *SessionState) {
		s.Initialized = true
		if !ok {
			return
		}
		s.User = sess.User
		s.AccessToken = sess.AccessToken
		s.RefreshToken = sess.RefreshToken
		s.TokenExpiry = sess.ExpiresAt
		s.Authenticated = sess.AccessToken != "" && sess.RefreshToken != "" && !sess.Expired(now)
	})
	return err
}

// Login authenticates against the backend and persists the session.
func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		m.fail(ErrEmailRequired.Error(), &FieldError{Field: "email", Message: ErrEmailRequired.Error()})
		return ErrEmailRequired
	}
	if password == "" {
		m.fail(ErrPasswordRequired.Error(), &FieldError{Field: "password", Message: ErrPasswordRequired.Error()})
		return ErrPasswordRequired
	}

	m.begin()
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.fail(message(err, "Authentication failed"), nil)
		m.update(func(s *SessionState) { s.Authenticated = false })
		return err
	}
	return m.establish(ctx, resp)
}

// Register creates an account and signs it in.
func (m *SessionManager) Register(ctx context.Context, in domain.RegisterInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		m.fail(ErrEmailRequired.Error(), &FieldError{Field: "email", Message: ErrEmailRequired.Error()})
		return ErrEmailRequired
	}
	if in.Password == "" {
		m.fail(ErrPasswordRequired.Error(), &FieldError{Field: "password", Message: ErrPasswordRequired.Error()})
		return ErrPasswordRequired
	}

	m.begin()
	resp, err := m.api.Register(ctx, in)
	if err != nil {
		msg := message(err, "Registration failed")
		m.fail(msg, registerFieldError(err, msg))
		m.update(func(s *SessionState) { s.Authenticated = false })
		return err
	}
	return m.establish(ctx, resp)
}

// registerFieldError attributes a registration failure using the error
// code, or the field the backend named.
func registerFieldError(err error, msg string) *FieldError {
	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		return nil
	}
	switch {
	case apiErr.Field != "":
		return &FieldError{Field: apiErr.Field, Message: msg}
	case apiErr.Code == domain.CodeCaptchaFailed:
		return &FieldError{Field: "recaptchaToken", Message: msg}
	case apiErr.Code == domain.CodeEmailTaken:
		return &FieldError{Field: "email", Message: msg}
	}
	return nil
}

func (m *SessionManager) establish(ctx context.Context, resp *domain.AuthResponse) error {
	now := m.clock()
	sess := domain.Session{
		User:         resp.User,
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    now.Add(SessionTTL),
	}
	if err := m.creds.SaveLogin(ctx, sess); err != nil {
		m.fail("Authentication failed", nil)
		return err
	}
	if err := m.creds.MarkLogin(ctx, now); err != nil {
		log.Printf("[session] mark login: %v", err)
	}
	m.update(func(s *SessionState) {
		s.User = sess.User
		s.AccessToken = sess.AccessToken
		s.RefreshToken = sess.RefreshToken
		s.TokenExpiry = sess.ExpiresAt
		s.Authenticated = true
		s.Loading = false
		s.Error = ""
		s.FieldError = nil
	})
	return nil
}

// Logout tells the backend and then clears the session whatever it said.
func (m *SessionManager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		log.Printf("[session] logout: %v", err)
	}
	m.clear(ctx)
}

func (m *SessionManager) clear(ctx context.Context) {
	if err := m.creds.Clear(ctx); err != nil {
		log.Printf("[session] clear credentials: %v", err)
	}
	m.update(func(s *SessionState) {
		s.User = nil
		s.AccessToken = ""
		s.RefreshToken = ""
		s.TokenExpiry = time.Time{}
		s.Authenticated = false
		s.Loading = false
	})
}

// RefreshSession renews the token pair. It reports false when there is no
// refresh token, and logs out when the backend refuses it.
func (m *SessionManager) RefreshSession(ctx context.Context) bool {
	pair, err := m.creds.Tokens(ctx)
	if err != nil {
		log.Printf("[session] read tokens: %v", err)
	}
	refresh := pair.RefreshToken
	if refresh == "" {
		refresh = m.State().RefreshToken
	}
	if refresh == "" {
		return false
	}

	next, err := m.api.RefreshToken(ctx, refresh)
	if err == nil && next.AccessToken == "" {
		err = credentials.ErrIncompletePair
	}
	if err == nil {
		if next.RefreshToken == "" {
			next.RefreshToken = refresh
		}
		err = m.persistRefresh(ctx, next)
	}
	if err != nil {
		log.Printf("[session] refresh: %v", err)
		m.Logout(ctx)
		m.update(func(s *SessionState) { s.Error = MsgSessionExpired })
		return false
	}
	return true
}

func (m *SessionManager) persistRefresh(ctx context.Context, pair domain.TokenPair) error {
	now := m.clock()
	st := m.State()
	sess := domain.Session{
		User:         st.User,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    now.Add(SessionTTL),
	}
	if err := m.creds.SaveLogin(ctx, sess); err != nil {
		return err
	}
	m.update(func(s *SessionState) {
		s.AccessToken = pair.AccessToken
		s.RefreshToken = pair.RefreshToken
		s.TokenExpiry = sess.ExpiresAt
		s.Authenticated = true
	})
	return nil
}

// CheckAuth reconciles the authenticated flag with the stored tokens. An
// expired session is refreshed once and reported as false for this call.
func (m *SessionManager) CheckAuth(ctx context.Context) bool {
	pair, err := m.creds.Tokens(ctx)
	if err != nil {
		log.Printf("[session] read tokens: %v", err)
	}
	present := pair.Complete()
	now := m.clock()

	m.update(func(s *SessionState) {
		s.Initialized = true
		if present {
			s.AccessToken = pair.AccessToken
			s.RefreshToken = pair.RefreshToken
		}
		s.Authenticated = present
	})
	if !present {
		return false
	}

	st := m.State()
	if st.TokenExpiry.IsZero() {
		var sess domain.Session
		if ok, _ := m.creds.LoadSlice(ctx, domain.KeyAuthSlice, &sess); ok {
			st.TokenExpiry = sess.ExpiresAt
			m.update(func(s *SessionState) { s.TokenExpiry = sess.ExpiresAt })
		}
	}
	if !st.TokenExpiry.IsZero() && !now.Before(st.TokenExpiry) {
		m.RefreshSession(ctx)
		return false
	}

	if st.User == nil {
		u, err := m.creds.User(ctx)
		if err != nil {
			log.Printf("[session] read user: %v", err)
		}
		if u != nil {
			m.update(func(s *SessionState) { s.User = u })
		}
	}
	return true
}

// ForgotPassword requests a reset link for email.
func (m *SessionManager) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		m.fail(ErrEmailRequired.Error(), &FieldError{Field: "email", Message: ErrEmailRequired.Error()})
		return ErrEmailRequired
	}
	m.begin()
	if err := m.api.ForgotPassword(ctx, strings.TrimSpace(email)); err != nil {
		m.fail(message(err, "Password reset request failed"), nil)
		return err
	}
	m.update(func(s *SessionState) { s.Loading = false })
	return nil
}

// ResetPassword sets a new password using a reset token.
func (m *SessionManager) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		m.fail(ErrTokenRequired.Error(), nil)
		return ErrTokenRequired
	}
	if password == "" {
		m.fail(ErrPasswordRequired.Error(), &FieldError{Field: "password", Message: ErrPasswordRequired.Error()})
		return ErrPasswordRequired
	}
	m.begin()
	if err := m.api.ResetPassword(ctx, token, password); err != nil {
		m.fail(message(err, "Password reset failed"), nil)
		return err
	}
	m.update(func(s *SessionState) { s.Loading = false })
	return nil
}

// VerifyEmail confirms the user's address.
func (m *SessionManager) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		m.fail(ErrTokenRequired.Error(), nil)
		return ErrTokenRequired
	}
	m.begin()
	if err := m.api.VerifyEmail(ctx, token); err != nil {
		m.fail(message(err, "Email verification failed. The link may be expired or invalid."), nil)
		return err
	}

	var verified *domain.User
	m.update(func(s *SessionState) {
		s.Loading = false
		if s.User != nil {
			s.User.IsEmailVerified = true
			u := *s.User
			verified = &u
		}
	})
	if verified != nil {
		if err := m.creds.SaveUser(ctx, verified); err != nil {
			log.Printf("[session] save user: %v", err)
		}
		st := m.State()
		sess := domain.Session{User: st.User, AccessToken: st.AccessToken, RefreshToken: st.RefreshToken, ExpiresAt: st.TokenExpiry}
		if err := m.creds.SaveSlice(ctx, domain.KeyAuthSlice, sess); err != nil {
			log.Printf("[session] save session: %v", err)
		}
	}
	return nil
}

// ClearError drops the current error message.
func (m *SessionManager) ClearError() {
	m.update(func(s *SessionState) {
		s.Error = ""
		s.FieldError = nil
	})
}
