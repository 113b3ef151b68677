package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"tesnim/internal/domain"
)

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	req := map[string]string{"email": email, "password": password}
	var resp domain.AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/register", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout revokes the refresh tokens of the current user.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// ForgotPassword asks the backend to send a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.Do(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	req := map[string]string{"token": token, "password": password}
	return c.Do(ctx, http.MethodPost, "/auth/reset-password", req, nil)
}

// VerifyEmail confirms the address the token was issued for.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.Do(ctx, http.MethodPost, "/auth/verify-email", map[string]string{"token": token}, nil)
}

// RefreshToken exchanges a refresh token for a new pair. It never retries.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	var pair domain.TokenPair
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return pair, err
	}
	err = c.send(ctx, http.MethodPost, "/auth/refresh-token", payload, "", &pair)
	return pair, err
}
