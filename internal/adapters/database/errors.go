package database

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the driver layer.
var (
	// ErrConnectionNotOpen is returned when a native connection is requested
	// before any settings were assigned.
	ErrConnectionNotOpen = errors.New("connection is closed")

	// ErrConnectionSettingsMissing is returned when a connection string is
	// built without settings.
	ErrConnectionSettingsMissing = errors.New("connection settings missing")

	// ErrInvalidSettings is returned when settings cannot be expressed as a
	// connection string.
	ErrInvalidSettings = errors.New("invalid connection settings")

	// ErrUnsupportedOperation is returned when a backend does not provide a
	// required capability.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrPlaceholderArityMismatch is reported when the backend rejects a bound
	// value count that differs from the statement's placeholder count.
	ErrPlaceholderArityMismatch = errors.New("placeholder arity mismatch")

	// ErrBackendExecution matches every failure reported by a native handle.
	ErrBackendExecution = errors.New("backend execution failed")
)

// BackendError carries a native failure together with the operation that
// produced it. Unwrap returns the native error unchanged.
type BackendError struct {
	Op    string
	Query string
	Cause error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Query, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying native error.
func (e *BackendError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches one of the backend error kinds.
func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrBackendExecution:
		return true
	case ErrPlaceholderArityMismatch:
		return isArityFailure(e.Cause)
	}
	return false
}

// NewBackendError wraps a native failure. A nil cause yields nil.
func NewBackendError(op, query string, cause error) error {
	if cause == nil {
		return nil
	}
	return &BackendError{Op: op, Query: query, Cause: cause}
}

// arityMarkers are the fragments native drivers use when the number of bound
// arguments does not match the statement.
var arityMarkers = []string{
	"arguments, got",
	"wrong number of arguments",
	"bind message supplies",
	"number of parameters",
}

func isArityFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range arityMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsBackendError checks if an error came from a native handle.
func IsBackendError(err error) bool {
	return errors.Is(err, ErrBackendExecution)
}
