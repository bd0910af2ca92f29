// Package apperr is the error taxonomy shared by services and handlers.
//
// Every error carries a kind (matchable with errors.Is) and a short message
// that is safe to show to end users. The underlying cause, if any, is kept
// for logging.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidState     = errors.New("invalid state")
	ErrUnavailable      = errors.New("dependency unavailable")
	ErrValidation       = errors.New("validation failed")
)

type Error struct {
	Kind    error
	Message string
	Err     error

	// Fields holds per-field messages for validation errors.
	Fields map[string][]string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func PermissionDenied(msg string) error {
	return &Error{Kind: ErrPermissionDenied, Message: msg}
}

func InvalidState(msg string) error {
	return &Error{Kind: ErrInvalidState, Message: msg}
}

// Unavailable wraps a failed store or downstream call.
func Unavailable(err error, msg string) error {
	return &Error{Kind: ErrUnavailable, Message: msg, Err: err}
}

func Validation(msg string, fields map[string][]string) error {
	return &Error{Kind: ErrValidation, Message: msg, Fields: fields}
}

// HTTPStatus maps an error to the response status code. Unknown errors are 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Something went wrong, please try again"
}

// FieldErrors returns the per-field validation messages, if any.
func FieldErrors(err error) map[string][]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
