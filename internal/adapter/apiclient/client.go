// Package apiclient is the HTTP adapter the client core uses to reach the
// backend. It attaches bearer credentials and renews them once on a 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"tesnim/internal/domain"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000/api/v1"

const defaultTimeout = 30 * time.Second

var (
	// ErrSessionExpired is returned when a refresh failed and the stored
	// credentials were cleared.
	ErrSessionExpired = errors.New("session expired")

	errNoRefreshToken = errors.New("no refresh token")
)

// TokenStore is the slice of the credential store the client needs.
type TokenStore interface {
	Tokens(ctx context.Context) (domain.TokenPair, error)
	SaveTokens(ctx context.Context, pair domain.TokenPair) error
	Clear(ctx context.Context) error
}

// Client performs authenticated JSON requests against the backend.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenStore
	userAgent string
	onExpired func()

	refreshGroup singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithSessionExpiredHandler registers fn to run after a failed refresh
// cleared the credentials. It plays the role of navigating to login.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a Client for baseURL.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a JSON request and decodes a 2xx body into out. A 401 triggers
// at most one refresh and one retry.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		payload = b
	}

	pair, err := c.tokens.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	err = c.send(ctx, method, path, payload, pair.AccessToken, out)
	if !domain.IsUnauthorized(err) || !refreshable(path) {
		return err
	}

	token, rerr := c.refresh(ctx, pair.AccessToken)
	if errors.Is(rerr, errNoRefreshToken) {
		return err
	}
	if rerr != nil {
		return rerr
	}

	// The retry is final: a second 401 propagates.
	return c.send(ctx, method, path, payload, token, out)
}

// refreshable excludes the endpoints that establish or end credentials.
// A rejected logout is already the end of the session.
func refreshable(path string) bool {
	switch path {
	case "/auth/login", "/auth/register", "/auth/refresh-token", "/auth/logout":
		return false
	}
	return true
}

// refresh renews the pair once for every caller that saw used rejected.
func (c *Client) refresh(ctx context.Context, used string) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		pair, err := c.tokens.Tokens(ctx)
		if err != nil {
			return "", err
		}
		if pair.AccessToken != "" && pair.AccessToken != used {
			return pair.AccessToken, nil
		}
		if pair.RefreshToken == "" {
			return "", errNoRefreshToken
		}

		next, err := c.RefreshToken(ctx, pair.RefreshToken)
		if err == nil && next.RefreshToken == "" {
			next.RefreshToken = pair.RefreshToken
		}
		if err == nil {
			err = c.tokens.SaveTokens(ctx, next)
		}
		if err != nil {
			log.Printf("[apiclient] token refresh failed: %v", err)
			if cerr := c.tokens.Clear(ctx); cerr != nil {
				log.Printf("[apiclient] clear credentials: %v", cerr)
			}
			if c.onExpired != nil {
				c.onExpired()
			}
			return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		return next.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, data []byte) *domain.APIError {
	var body struct {
		Error   string           `json:"error"`
		Message string           `json:"message"`
		Code    domain.ErrorCode `json:"code"`
		Field   string           `json:"field"`
	}
	apiErr := &domain.APIError{StatusCode: status}
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}
	apiErr.Code = body.Code
	apiErr.Field = body.Field
	apiErr.Message = body.Error
	if apiErr.Message == "" {
		apiErr.Message = body.Message
	}
	return apiErr
}
