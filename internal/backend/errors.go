// Package backend implements the REST contract the client core talks to:
// accounts with JWT access tokens and rotating refresh tokens, plus the
// task, event, todo and timer resources of each user.
package backend

import (
	"net/http"

	"tesnim/internal/domain"
)

func errInvalidCredentials() error {
	return domain.NewAPIError(http.StatusUnauthorized, domain.CodeInvalidCredentials, "", "Invalid email or password")
}

func errUnauthorized(msg string) error {
	return domain.NewAPIError(http.StatusUnauthorized, domain.CodeUnauthorized, "", msg)
}

func errInvalidToken(status int, msg string) error {
	return domain.NewAPIError(status, domain.CodeInvalidToken, "", msg)
}

func errValidation(field, msg string) error {
	return domain.NewAPIError(http.StatusBadRequest, domain.CodeValidation, field, msg)
}

func errNotFound(what string) error {
	return domain.NewAPIError(http.StatusNotFound, domain.CodeNotFound, "", what+" not found")
}
