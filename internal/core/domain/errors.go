package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRunInProgress indicates a sync run is already executing.
	ErrRunInProgress = errors.New("run in progress")

	// Run failure taxonomy.

	// ErrConfig indicates a missing or malformed supplier descriptor or an
	// unregistered component. Fatal for the affected supplier and never retried.
	ErrConfig = errors.New("configuration error")

	// ErrAuth indicates credentials were rejected by a supplier or sink.
	// Fatal for the affected supplier and never retried.
	ErrAuth = errors.New("authentication error")

	// ErrTransport indicates a network or timeout failure. Retried with backoff.
	ErrTransport = errors.New("transport error")

	// ErrUnsupportedOperation indicates the extractor does not support the
	// requested mode, typically incremental extraction.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrValidation indicates a transformed record failed the unified schema.
	// Recorded per record and never aborts a run.
	ErrValidation = errors.New("validation error")

	// ErrRetriesExhausted indicates a transport call kept failing after the
	// configured number of retries.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrCancelled indicates a run stopped early because its context was cancelled.
	ErrCancelled = errors.New("cancelled")
)

// UnknownComponentError is returned when no factory is registered for a
// (role, id) pair. It is a configuration error.
type UnknownComponentError struct {
	Role string
	ID   string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown component: no %s registered for %q", e.Role, e.ID)
}

// Unwrap allows errors.Is(err, ErrConfig).
func (e *UnknownComponentError) Unwrap() error {
	return ErrConfig
}

// TransportError wraps a network level failure of an extractor or loader call.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports ErrTransport as a match so callers can classify with errors.Is.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// NewTransportError wraps err as a TransportError for op.
func NewTransportError(op string, statusCode int, err error) *TransportError {
	return &TransportError{Op: op, StatusCode: statusCode, Err: err}
}

// IsFatal reports whether err aborts a supplier run rather than a single record.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfig) ||
		errors.Is(err, ErrAuth) ||
		errors.Is(err, ErrUnsupportedOperation) ||
		errors.Is(err, ErrRetriesExhausted)
}
