package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskdesk-api/internal/domain"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrForbidden indicates the caller's role or ownership does not permit the operation.
	// API layer should map this to HTTP 403 Forbidden.
	ErrForbidden = errors.New("operation not permitted")

	// ErrUnknownEmail is returned by Login when no account has the given email.
	// The API layer reports it as 400, not 404.
	ErrUnknownEmail = errors.New("user not found")

	// ErrInvalidCredentials is returned by Login when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidAssignee is returned when a task is assigned to an admin account.
	ErrInvalidAssignee = fmt.Errorf("%w: tasks can only be assigned to students", domain.ErrValidation)

	// ErrEmptyPatch is returned when an update carries no fields.
	ErrEmptyPatch = fmt.Errorf("%w: update contains no fields", domain.ErrValidation)
)

// ServiceError adds the failing operation to an unexpected error.
// Expected conditions are returned as sentinels instead.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
