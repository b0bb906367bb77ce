package store

import (
	"errors"
	"fmt"
)

// Sentinels shared by every store implementation. Entity-specific errors wrap
// the generic ones so callers can match at either level with errors.Is.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrDuplicate       = errors.New("entity already exists")
	ErrInvalidEntity   = errors.New("invalid entity")
	ErrVersionConflict = errors.New("version conflict")

	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)
	ErrEmailExists  = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError reports whether err is any not-found sentinel.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any uniqueness sentinel.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError adds the entity and operation to a failed store call.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("store %s %s: %s", e.Entity, e.Operation, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the entity and operation that produced it.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
