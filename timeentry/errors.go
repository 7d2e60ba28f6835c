package timeentry

import (
	"errors"
	"fmt"
)

// ErrEntryNotFound is returned when an entry id is unknown to the
// persistence layer.
var ErrEntryNotFound = errors.New("time entry not found")

// ValidationError rejects a command before any state changes: missing
// required fields, malformed manual durations, bad references.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a field-scoped validation failure.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError rejects a command that collides with the user's active
// session or with a persistence call still in flight.
type ConflictError struct {
	UserID string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict for user %s: %s", e.UserID, e.Reason)
}

// ConfigurationError marks a data-quality problem in the user record, such
// as a missing shift assignment. Callers may fall back to a default but
// must log the condition.
type ConfigurationError struct {
	UserID string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for user %s: %s", e.UserID, e.Reason)
}

// TransportError wraps a network-level failure (unreachable host, timeout)
// talking to the remote service. It triggers the offline fallback and is
// never surfaced as a hard failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteRejectionError carries a structured rejection from a reachable
// server. It must propagate verbatim and never convert into a fallback
// entry.
type RemoteRejectionError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *RemoteRejectionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote rejected %s (%d %s): %s", e.Op, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("remote rejected %s (%d): %s", e.Op, e.StatusCode, e.Message)
}

// IsTransport reports whether err is a transport-level failure eligible for
// the offline fallback.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRemoteRejection reports whether err is an explicit server-side
// rejection.
func IsRemoteRejection(err error) bool {
	var re *RemoteRejectionError
	return errors.As(err, &re)
}
