package types

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Record kinds used in error values and task keys.
const (
	KindJob       = "job"
	KindCandidate = "candidate"
	KindResume    = "resume"
	KindTemplate  = "email_template"
)

// NotFoundError indicates a referenced record does not exist.
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NotReadyError indicates a referenced record exists but has not finished
// processing, or a candidate has no resume to match with.
type NotReadyError struct {
	Kind   string
	ID     uuid.UUID
	Reason string
}

func (e *NotReadyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s not ready: %s", e.Kind, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s %s not ready", e.Kind, e.ID)
}

// ValidationError indicates invalid input on create or update.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ConflictError indicates an optimistic version check failed.
type ConflictError struct {
	Kind     string
	ID       uuid.UUID
	Expected int64
	Actual   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently: expected version %d, found %d",
		e.Kind, e.ID, e.Expected, e.Actual)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsNotReady reports whether err wraps a NotReadyError.
func IsNotReady(err error) bool {
	var target *NotReadyError
	return errors.As(err, &target)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsConflict reports whether err wraps a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
