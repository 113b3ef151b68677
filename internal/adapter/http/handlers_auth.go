// Package adapthttp implements the HTTP adapter for the backend services.
package adapthttp

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"

	"tesnim/internal/domain"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req domain.RegisterInput
	if err := parseJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.svc.Auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	pair, err := s.svc.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.svc.Auth.Logout(r.Context(), userFrom(r.Context()).ID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.svc.Auth.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.svc.Auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.svc.Auth.VerifyEmail(r.Context(), req.Token); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled": s.oidcConfig.Enabled,
	})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		writeError(w, domain.NewAPIError(http.StatusNotFound, domain.CodeNotFound, "", "sso disabled"))
		return
	}
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, s.oidcConfig.OAuth2Config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		writeError(w, domain.NewAPIError(http.StatusNotFound, domain.CodeNotFound, "", "sso disabled"))
		return
	}

	state, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != state.Value {
		writeError(w, domain.NewAPIError(http.StatusBadRequest, domain.CodeInvalidToken, "", "invalid state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", MaxAge: -1, Path: "/"})

	token, err := s.oidcConfig.OAuth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, domain.NewAPIError(http.StatusBadGateway, domain.CodeInvalidToken, "", "failed to exchange token"))
		return
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		writeError(w, domain.NewAPIError(http.StatusBadGateway, domain.CodeInvalidToken, "", "no id_token"))
		return
	}
	idToken, err := s.oidcConfig.Provider.Verifier(&oidc.Config{ClientID: s.oidcConfig.OAuth2Config.ClientID}).Verify(r.Context(), rawIDToken)
	if err != nil {
		writeError(w, domain.NewAPIError(http.StatusUnauthorized, domain.CodeInvalidToken, "", "failed to verify token"))
		return
	}

	var claims struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err = idToken.Claims(&claims); err != nil || claims.Email == "" {
		writeError(w, domain.NewAPIError(http.StatusUnauthorized, domain.CodeInvalidToken, "", "identity has no email"))
		return
	}

	resp, err := s.svc.Auth.LoginWithIdentity(r.Context(), claims.Email, claims.GivenName, claims.FamilyName)
	if err != nil {
		writeError(w, err)
		return
	}

	if s.oidcConfig.RedirectTo == "" {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	fragment := url.Values{"token": {resp.Token}, "refreshToken": {resp.RefreshToken}}
	http.Redirect(w, r, s.oidcConfig.RedirectTo+"#"+fragment.Encode(), http.StatusFound)
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
