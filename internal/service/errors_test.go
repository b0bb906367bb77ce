package service

import (
	"errors"
	"testing"

	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestServiceError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewServiceError("create_task", "failed to save task", cause)

	assert.EqualError(t, err, "create_task failed: failed to save task: connection reset")
	assert.ErrorIs(t, err, cause)

	var se *ServiceError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "create_task", se.Operation)

	assert.EqualError(t, NewServiceError("login", "no token", nil), "login failed: no token")
}

func TestValidationSentinels(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ErrInvalidAssignee, domain.ErrValidation)
	assert.ErrorIs(t, ErrEmptyPatch, domain.ErrValidation)
	assert.NotErrorIs(t, ErrForbidden, domain.ErrValidation)
	assert.NotErrorIs(t, ErrInvalidCredentials, domain.ErrValidation)
}
