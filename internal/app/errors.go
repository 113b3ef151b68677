// Package app holds the client core: the session manager and the domain
// stores that keep local state in sync with the backend.
package app

import (
	"errors"

	"tesnim/internal/domain"
)

var (
	// ErrEmailRequired indicates that no email was supplied.
	ErrEmailRequired = errors.New("email is required")
	// ErrPasswordRequired indicates that no password was supplied.
	ErrPasswordRequired = errors.New("password is required")
	// ErrTokenRequired indicates that a reset or verification token was empty.
	ErrTokenRequired = errors.New("token is required")
	// ErrTitleRequired indicates that a task or event has no title.
	ErrTitleRequired = errors.New("title is required")
	// ErrTextRequired indicates that a todo has no text.
	ErrTextRequired = errors.New("text is required")
	// ErrInvalidRange indicates that an event ends before it starts.
	ErrInvalidRange = errors.New("end time must not be before start time")
	// ErrInvalidPriority indicates an unknown task priority.
	ErrInvalidPriority = errors.New("invalid priority")
	// ErrInvalidFilter indicates an unknown task filter.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidView indicates an unknown calendar view.
	ErrInvalidView = errors.New("invalid calendar view")
	// ErrNotAuthenticated indicates that an operation needs a session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// MsgSessionExpired is shown after a failed refresh.
const MsgSessionExpired = "Session expired. Please login again."

// message picks the backend message when there is one, else fallback.
func message(err error, fallback string) string {
	if apiErr, ok := domain.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	if isValidation(err) {
		return err.Error()
	}
	return fallback
}

func isValidation(err error) bool {
	for _, v := range []error{
		ErrEmailRequired, ErrPasswordRequired, ErrTokenRequired, ErrTitleRequired,
		ErrTextRequired, ErrInvalidRange, ErrInvalidPriority, ErrInvalidFilter, ErrInvalidView,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
