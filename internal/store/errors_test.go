package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
	}{
		{name: "nil error"},
		{name: "generic error", err: errors.New("some error")},
		{name: "ErrNotFound", err: ErrNotFound, notFound: true},
		{name: "ErrUserNotFound", err: ErrUserNotFound, notFound: true},
		{name: "wrapped ErrTaskNotFound", err: fmt.Errorf("load: %w", ErrTaskNotFound), notFound: true},
		{name: "ErrDuplicate", err: ErrDuplicate, duplicate: true},
		{name: "wrapped ErrEmailExists", err: fmt.Errorf("create user: %w", ErrEmailExists), duplicate: true},
		{name: "version conflict is neither", err: ErrVersionConflict},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.duplicate, IsDuplicateError(tt.err))
		})
	}
}

func TestEntitySpecificErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	assert.False(t, errors.Is(ErrUserNotFound, ErrTaskNotFound))
	assert.False(t, errors.Is(ErrTaskNotFound, ErrUserNotFound))
	assert.Equal(t, "entity not found: task", ErrTaskNotFound.Error())
	assert.Equal(t, "entity already exists: email", ErrEmailExists.Error())
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	originalErr := errors.New("database connection failed")
	storeErr := NewStoreError("task", "update", "database error", originalErr)

	assert.Equal(t,
		"store task update: database error: database connection failed",
		storeErr.Error())
	assert.ErrorIs(t, storeErr, originalErr)

	bare := NewStoreError("user", "list", "scan failed", nil)
	assert.Equal(t, "store user list: scan failed", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
