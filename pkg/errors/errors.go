package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the monitoring core. Callers match them with errors.Is.
var (
	// ErrConfigMissing indicates a threshold or policy lookup found nothing.
	// Classification degrades to "unknown" instead of surfacing this; it is
	// exported for callers that want to distinguish the case explicitly.
	ErrConfigMissing = errors.New("configuration missing")

	// ErrInvalidTransition indicates an alert lifecycle violation, such as
	// acknowledging a resolved alert.
	ErrInvalidTransition = errors.New("invalid alert transition")

	// ErrNotFound indicates an unknown alert ID.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable indicates the backing KV or SQL store could not be
	// reached. Call sites decide fail-open or fail-closed.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	cause   error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an AppError that preserves the underlying cause for errors.Is.
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, cause: cause}
}

// WithDetails adds details to an error
func WithDetails(err *AppError, details string) *AppError {
	return &AppError{Code: err.Code, Message: err.Message, Details: details, cause: err.cause}
}

// GetStatusCode returns the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
