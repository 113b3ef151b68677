package backend

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tesnim/internal/domain"
)

// Demo account created by SeedDemoUser.
const (
	DemoEmail    = "test@mail.com"
	DemoPassword = "User@123"
)

const (
	minPasswordLen = 8
	refreshTTL     = 30 * 24 * time.Hour
	oneTimeTTL     = 24 * time.Hour
)

// CaptchaVerifier checks a human-verification token sent with registration.
type CaptchaVerifier func(ctx context.Context, token string) bool

// Notifier delivers a one-time token (email verification or password reset)
// to the account owner.
type Notifier func(ctx context.Context, kind domain.TokenKind, email, token string)

// AcceptAnyCaptcha accepts every non-empty token.
func AcceptAnyCaptcha(_ context.Context, token string) bool {
	return strings.TrimSpace(token) != ""
}

// LogNotifier writes one-time tokens to the log.
func LogNotifier(_ context.Context, kind domain.TokenKind, email, token string) {
	log.Printf("[auth] %s token for %s: %s", kind, email, token)
}

// AuthService handles accounts, credentials and token issuance.
type AuthService struct {
	accounts domain.AccountRepository
	tokens   domain.TokenRepository
	jwt      *TokenManager

	cost    int
	captcha CaptchaVerifier
	notify  Notifier
	now     func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(accounts domain.AccountRepository, tokens domain.TokenRepository, jwt *TokenManager) *AuthService {
	return &AuthService{
		accounts: accounts,
		tokens:   tokens,
		jwt:      jwt,
		cost:     bcrypt.DefaultCost,
		captcha:  AcceptAnyCaptcha,
		notify:   LogNotifier,
		now:      time.Now,
	}
}

// SetBcryptCost changes the hashing cost for new passwords.
func (s *AuthService) SetBcryptCost(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.cost = cost
	}
}

// SetCaptchaVerifier replaces the registration captcha check.
func (s *AuthService) SetCaptchaVerifier(v CaptchaVerifier) { s.captcha = v }

// SetNotifier replaces the one-time token delivery.
func (s *AuthService) SetNotifier(n Notifier) { s.notify = n }

// SetClock replaces the time source for token expiry.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
	s.jwt.now = now
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResponse, error) {
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return nil, errValidation("firstName", "First name is required")
	case strings.TrimSpace(in.LastName) == "":
		return nil, errValidation("lastName", "Last name is required")
	case !validEmail(in.Email):
		return nil, errValidation("email", "A valid email is required")
	case len(in.Password) < minPasswordLen:
		return nil, errValidation("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}
	if !s.captcha(ctx, in.RecaptchaToken) {
		return nil, domain.NewAPIError(http.StatusBadRequest, domain.CodeCaptchaFailed, "recaptchaToken", "Captcha verification failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}
	acc := &domain.Account{
		User: domain.User{
			ID:        uuid.NewString(),
			Email:     in.Email,
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			Role:      domain.RoleUser,
			Plan:      domain.PlanFreemium,
		},
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewAPIError(http.StatusConflict, domain.CodeEmailTaken, "email", "Email is already registered")
		}
		return nil, err
	}

	if err := s.sendOneTime(ctx, domain.TokenVerifyEmail, acc); err != nil {
		log.Printf("[auth] verification token for %s: %v", acc.Email, err)
	}
	return s.signIn(ctx, acc)
}

// Login checks the password and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	acc, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidCredentials()
	}
	if err != nil {
		return nil, err
	}
	if acc.PasswordHash == "" {
		return nil, errInvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials()
	}
	return s.signIn(ctx, acc)
}

// LoginWithIdentity signs in an account verified by an external identity
// provider, creating it on first use.
func (s *AuthService) LoginWithIdentity(ctx context.Context, email, firstName, lastName string) (*domain.AuthResponse, error) {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		acc = &domain.Account{
			User: domain.User{
				ID:              uuid.NewString(),
				Email:           email,
				FirstName:       firstName,
				LastName:        lastName,
				Role:            domain.RoleUser,
				Plan:            domain.PlanFreemium,
				IsEmailVerified: true,
			},
			CreatedAt: s.now().UTC(),
		}
		err = s.accounts.Create(ctx, acc)
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race with a concurrent first login.
			acc, err = s.accounts.GetByEmail(ctx, email)
		}
	}
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, acc)
}

// Refresh exchanges a refresh token for a new pair. The old refresh token
// is consumed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if refreshToken == "" {
		return domain.TokenPair{}, errInvalidToken(http.StatusUnauthorized, "Refresh token is required")
	}
	rec, err := s.tokens.Consume(ctx, domain.TokenRefresh, hashToken(refreshToken), s.now())
	if errors.Is(err, domain.ErrNotFound) {
		return domain.TokenPair{}, errInvalidToken(http.StatusUnauthorized, "Invalid or expired refresh token")
	}
	if err != nil {
		return domain.TokenPair{}, err
	}
	acc, err := s.accounts.GetByID(ctx, rec.UserID)
	if err != nil {
		return domain.TokenPair{}, errInvalidToken(http.StatusUnauthorized, "Invalid or expired refresh token")
	}
	return s.issuePair(ctx, acc)
}

// Logout revokes every refresh token of the user.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.tokens.DeleteForUser(ctx, domain.TokenRefresh, userID)
}

// Authenticate resolves the user behind an access token.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.jwt.Validate(accessToken)
	if errors.Is(err, ErrExpiredToken) {
		return nil, errUnauthorized("Token has expired")
	}
	if err != nil {
		return nil, errUnauthorized("Invalid token")
	}
	acc, err := s.accounts.GetByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errUnauthorized("Invalid token")
	}
	if err != nil {
		return nil, err
	}
	u := acc.User
	return &u, nil
}

// ForgotPassword sends a reset token when the email belongs to an account.
// Unknown emails succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errValidation("email", "Email is required")
	}
	acc, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.sendOneTime(ctx, domain.TokenReset, acc)
}

// ResetPassword sets a new password using a reset token and signs the
// account out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLen {
		return errValidation("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}
	acc, err := s.consumeOneTime(ctx, domain.TokenReset, token)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	acc.PasswordHash = string(hash)
	if err := s.accounts.Update(ctx, acc); err != nil {
		return err
	}
	return s.tokens.DeleteForUser(ctx, domain.TokenRefresh, acc.ID)
}

// VerifyEmail marks the account behind token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	acc, err := s.consumeOneTime(ctx, domain.TokenVerifyEmail, token)
	if err != nil {
		return err
	}
	acc.IsEmailVerified = true
	return s.accounts.Update(ctx, acc)
}

// SeedDemoUser creates the demo admin account if it does not exist.
func (s *AuthService) SeedDemoUser(ctx context.Context) error {
	_, err := s.accounts.GetByEmail(ctx, DemoEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), s.cost)
	if err != nil {
		return err
	}
	err = s.accounts.Create(ctx, &domain.Account{
		User: domain.User{
			ID:              uuid.NewString(),
			Email:           DemoEmail,
			FirstName:       "Test",
			LastName:        "User",
			Role:            domain.RoleAdmin,
			Plan:            domain.PlanFreemium,
			IsEmailVerified: true,
		},
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	})
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	return err
}

func (s *AuthService) signIn(ctx context.Context, acc *domain.Account) (*domain.AuthResponse, error) {
	pair, err := s.issuePair(ctx, acc)
	if err != nil {
		return nil, err
	}
	u := acc.User
	return &domain.AuthResponse{Success: true, Token: pair.AccessToken, RefreshToken: pair.RefreshToken, User: &u}, nil
}

func (s *AuthService) issuePair(ctx context.Context, acc *domain.Account) (domain.TokenPair, error) {
	access, err := s.jwt.Issue(acc.ID, acc.Email, acc.Role)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.storeToken(ctx, domain.TokenRefresh, acc.ID, refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sendOneTime(ctx context.Context, kind domain.TokenKind, acc *domain.Account) error {
	token, err := s.storeToken(ctx, kind, acc.ID, oneTimeTTL)
	if err != nil {
		return err
	}
	s.notify(ctx, kind, acc.Email, token)
	return nil
}

func (s *AuthService) consumeOneTime(ctx context.Context, kind domain.TokenKind, token string) (*domain.Account, error) {
	if token == "" {
		return nil, errValidation("token", "Token is required")
	}
	rec, err := s.tokens.Consume(ctx, kind, hashToken(token), s.now())
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidToken(http.StatusBadRequest, "Invalid or expired token")
	}
	if err != nil {
		return nil, err
	}
	acc, err := s.accounts.GetByID(ctx, rec.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidToken(http.StatusBadRequest, "Invalid or expired token")
	}
	return acc, err
}

func (s *AuthService) storeToken(ctx context.Context, kind domain.TokenKind, userID string, ttl time.Duration) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	rec := domain.TokenRecord{
		Kind:      kind,
		Hash:      hashToken(token),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, rec); err != nil {
		return "", fmt.Errorf("store %s token: %w", kind, err)
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
