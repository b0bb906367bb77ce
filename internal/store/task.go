package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/domain"
)

// TaskFilter narrows a task query. The zero value matches every task.
type TaskFilter struct {
	// AssignedTo, when set, restricts results to tasks owned by that user.
	AssignedTo *uuid.UUID
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the assignee does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Find returns the tasks matching filter, newest first.
	Find(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// FindWithAssignees is Find joined with the assignee's public summary.
	FindWithAssignees(ctx context.Context, filter TaskFilter) ([]*domain.TaskWithAssignee, error)

	// Update persists every mutable field of task and increments its version.
	// When expectedVersion is positive the write only happens if the stored version
	// still equals it; otherwise ErrVersionConflict is returned. A zero
	// expectedVersion writes unconditionally. On success task.Version holds the
	// newly stored version.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task, expectedVersion int) error

	// Delete removes a task. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
