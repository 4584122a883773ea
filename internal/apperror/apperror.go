// Package apperror defines the error kinds shared by every layer of the tracker.
//
// Services and repositories return *AppError values that wrap one of the
// sentinels below. Callers check the kind with errors.Is and read the
// human-readable message with errors.As. The HTTP layer is the only place
// that turns a kind into a status code.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying driver error, never shown to clients
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the kind sentinel and the underlying cause so
// errors.Is(err, context.DeadlineExceeded) keeps working through a Storage error.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// UserNotFound is the not-found error for user lookups. The message is the one
// clients of the exercise API have always received.
func UserNotFound() *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: "User id does not exist",
		Field:   "userId",
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateUsername reports a registration for a name that is already taken.
// The message intentionally does not echo the username back.
func DuplicateUsername() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "Username already taken",
		Field:   "username",
	}
}

// Storage wraps a failure of the record store (unreachable, timed out, ...).
// HTTP handlers map this to 500 Internal Server Error.
func Storage(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStorage,
		Message: fmt.Sprintf("storage: %s failed", op),
		Cause:   cause,
	}
}
