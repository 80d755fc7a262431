package errors

import "errors"

// Common application errors for type-safe error handling.
// These errors can be checked using errors.Is() instead of string comparison.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTooLarge     = errors.New("payload too large")
	ErrInternal     = errors.New("internal server error")
)

// Error pairs one of the sentinel kinds with a message that is safe to show
// to the caller, and optionally the underlying cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// New returns an Error of the given kind without an underlying cause.
func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error of the given kind caused by err.
func Wrap(kind error, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}
