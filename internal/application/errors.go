package application

import (
	"fmt"
	"strings"
)

// FieldViolation describes a single failed constraint on one input field.
type FieldViolation struct {
	Field  string
	Reason string
}

// ValidationError reports every field constraint violated by an input, not
// just the first, so one response can surface all problems.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConflictError indicates a uniqueness invariant was violated on Field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already in use", e.Field)
}

// NotFoundError indicates the operation referenced a user that does not
// exist or was deleted. Key is the id or email the caller supplied.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %s not found", e.Key)
}

// StoreUnavailableError wraps a store failure that is not a business
// outcome. It is the only form in which store-level errors cross the
// service boundary.
type StoreUnavailableError struct {
	Cause error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Cause)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Cause
}
