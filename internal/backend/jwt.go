package backend

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when an access token is malformed or signed
	// with another key.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when an access token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

const accessTokenType = "access"

// TokenConfig holds the access-token settings.
type TokenConfig struct {
	Secret    string
	Issuer    string
	AccessTTL time.Duration
}

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates HS256 access tokens.
type TokenManager struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenManager creates a TokenManager. A zero AccessTTL means 15 minutes.
func NewTokenManager(cfg TokenConfig) *TokenManager {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	return &TokenManager{cfg: cfg, now: time.Now}
}

// Issue returns a signed access token for the account.
func (m *TokenManager) Issue(userID, email, role string) (string, error) {
	now := m.now()
	claims := AccessClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.cfg.Secret))
}

// Validate parses an access token and returns its claims.
func (m *TokenManager) Validate(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.cfg.Secret), nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid || claims.TokenType != accessTokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
