package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", ErrValidation)

	// ErrInvalidRole is returned when a role is not one of the known roles.
	ErrInvalidRole = fmt.Errorf("%w: invalid role", ErrValidation)

	// ErrInvalidTaskStatus is returned when a status label is not part of the lifecycle.
	ErrInvalidTaskStatus = fmt.Errorf("%w: invalid task status", ErrValidation)

	// ErrInvalidTransition is returned when a status change would move a task
	// backwards in its lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError describes a validation failure on a single field.
// It wraps an underlying sentinel so callers can still match with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel. A nil wrapped error unwraps to ErrValidation.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
