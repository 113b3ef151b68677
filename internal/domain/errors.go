package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies a failed API call independently of its message text.
type ErrorCode string

const (
	CodeInvalidCredentials ErrorCode = "invalid_credentials" // 401
	CodeEmailTaken         ErrorCode = "email_taken"         // 409
	CodeCaptchaFailed      ErrorCode = "captcha_failed"      // 400
	CodeInvalidToken       ErrorCode = "invalid_token"       // 400 or 401
	CodeValidation         ErrorCode = "validation_failed"   // 400
	CodeNotFound           ErrorCode = "not_found"           // 404
	CodeUnauthorized       ErrorCode = "unauthorized"        // 401
	CodeInternal           ErrorCode = "internal"            // 500
)

// APIError is a non-2xx response decoded from the backend error body.
type APIError struct {
	StatusCode int       `json:"-"`
	Code       ErrorCode `json:"code,omitempty"`
	Message    string    `json:"error"`
	Field      string    `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return e.Message
}

// NewAPIError builds an error as the backend would report it.
func NewAPIError(status int, code ErrorCode, field, msg string) *APIError {
	return &APIError{StatusCode: status, Code: code, Field: field, Message: msg}
}

// AsAPIError unwraps err into an *APIError if it carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusNotFound
}
