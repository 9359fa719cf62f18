// Package apperr defines the error kinds surfaced by the API and their HTTP
// status codes.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrTooManyRequests = errors.New("too many requests")
	ErrExpired         = errors.New("expired")
	ErrInternal        = errors.New("internal error")
)

// Error carries a client-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
	Details []string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func InvalidInput(message string, details ...string) *Error {
	return &Error{Kind: ErrInvalidInput, Message: message, Details: details}
}

func NotFound(message string) *Error {
	return New(ErrNotFound, message)
}

func Conflict(message string) *Error {
	return New(ErrConflict, message)
}

func Unauthenticated(message string) *Error {
	return New(ErrUnauthenticated, message)
}

func Forbidden(message string) *Error {
	return New(ErrForbidden, message)
}

func Expired(message string) *Error {
	return New(ErrExpired, message)
}

// Status maps an error to its HTTP status. Anything outside the taxonomy is 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show a client.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if Status(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}

// DetailsOf returns per-field validation messages, if any.
func DetailsOf(err error) []string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}
