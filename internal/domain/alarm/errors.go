package alarm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references an unknown alarm id.
	ErrNotFound = errors.New("alarm not found")

	// ErrInvariantViolation marks logic defects in the scheduling engine, such
	// as the occurrence calculator finding no candidate for a non-empty
	// recurrence set. It is never caused by user input.
	ErrInvariantViolation = errors.New("scheduler invariant violation")
)

// ValidationError rejects malformed alarm fields before any mutation happens.
type ValidationError struct {
	// Field is the name of the offending field.
	Field string
	// Reason describes why the value was rejected.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a store read/write failure. The mutation that caused
// it is rolled back in memory, so the caller may retry the operation.
type PersistenceError struct {
	// Op is the store operation that failed ("load" or "save").
	Op string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("alarm store %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
