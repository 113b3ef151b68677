package adapthttp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"tesnim/internal/backend"
)

// OIDCConfig enables single sign-on through an OpenID Connect provider.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
	// RedirectTo receives the token pair in its URL fragment after SSO. When
	// empty the callback answers with JSON instead.
	RedirectTo string
}

// NewOIDCConfig discovers the provider at issuer.
func NewOIDCConfig(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (OIDCConfig, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return OIDCConfig{}, fmt.Errorf("oidc discovery: %w", err)
	}
	return OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// Server is the driving HTTP adapter that routes requests to the backend
// services.
type Server struct {
	svc        *backend.Services
	oidcConfig OIDCConfig
}

// New creates a Server wired to the given services.
func New(svc *backend.Services) *Server {
	return &Server{svc: svc}
}

// WithOIDC enables the SSO routes.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// Handler returns the root http.Handler for the API.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/register", s.handleRegister)
	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/refresh-token", s.handleRefresh)
	api.HandleFunc("/auth/forgot-password", s.handleForgotPassword)
	api.HandleFunc("/auth/reset-password", s.handleResetPassword)
	api.HandleFunc("/auth/verify-email", s.handleVerifyEmail)
	api.HandleFunc("/auth/config", s.handleConfig)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)
	api.Handle("/auth/logout", s.authMiddleware(http.HandlerFunc(s.handleLogout)))

	protected := map[string]http.HandlerFunc{
		"/tasks":                     s.handleTasks,
		"/tasks/stats":               s.handleTaskStats,
		"/tasks/{id}":                s.handleTask,
		"/events":                    s.handleEvents,
		"/events/sync-google":        s.handleEventSync,
		"/events/{id}":               s.handleEvent,
		"/todos":                     s.handleTodos,
		"/todos/status/{status}":     s.handleTodosByStatus,
		"/todos/priority/{priority}": s.handleTodosByPriority,
		"/todos/tag/{tag}":           s.handleTodosByTag,
		"/todos/due-date":            s.handleTodosByDueDate,
		"/todos/{id}":                s.handleTodo,
		"/users/timer-settings":      s.handleTimerSettings,
		"/timer/sessions":            s.handleTimerSessions,
		"/timer/stats":               s.handleTimerStats,
	}
	for pattern, h := range protected {
		api.Handle(pattern, s.authMiddleware(h))
	}

	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", api))

	return s.loggingMiddleware(withNoCache(root))
}
