package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle position of a task.
type TaskStatus string

// Possible task status values, in lifecycle order.
const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Legacy labels accepted on input and normalized.
const (
	legacyStatusIncomplete = "incomplete"
	legacyStatusComplete   = "complete"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID          = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrEmptyTaskTitle       = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrEmptyTaskDescription = fmt.Errorf("%w: task description cannot be empty", ErrValidation)
	ErrEmptyTaskAssignee    = fmt.Errorf("%w: task assignee cannot be empty", ErrValidation)

	// ErrTaskNotCompleted is returned when verifying a task that is not completed yet.
	ErrTaskNotCompleted = errors.New("task is not completed")
)

// ParseTaskStatus converts a label into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(TaskStatusNotStarted), legacyStatusIncomplete:
		return TaskStatusNotStarted, nil
	case string(TaskStatusInProgress):
		return TaskStatusInProgress, nil
	case string(TaskStatusCompleted), legacyStatusComplete:
		return TaskStatusCompleted, nil
	default:
		return "", ErrInvalidTaskStatus
	}
}

// rank orders statuses along the lifecycle. Unknown statuses rank -1.
func (s TaskStatus) rank() int {
	switch s {
	case TaskStatusNotStarted:
		return 0
	case TaskStatusInProgress:
		return 1
	case TaskStatusCompleted:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a lifecycle status.
func (s TaskStatus) Valid() bool {
	return s.rank() >= 0
}

// Task is a unit of work assigned by an admin to exactly one student.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedTo  uuid.UUID  `json:"assigned_to"`
	Status      TaskStatus `json:"status"`
	Verified    bool       `json:"verified"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskWithAssignee pairs a task with the summary of the user it is assigned to.
type TaskWithAssignee struct {
	Task
	Assignee *UserSummary `json:"assignee,omitempty"`
}

// NewTask creates a not-started, unverified task at version 1.
func NewTask(title, description string, assignedTo uuid.UUID) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		AssignedTo:  assignedTo,
		Status:      TaskStatusNotStarted,
		Verified:    false,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if t.Description == "" {
		return ErrEmptyTaskDescription
	}

	if t.AssignedTo == uuid.Nil {
		return ErrEmptyTaskAssignee
	}

	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}

	if t.Verified && t.Status != TaskStatusCompleted {
		return ErrTaskNotCompleted
	}

	return nil
}

// IsAssignedTo reports whether userID owns the task.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return userID != uuid.Nil && t.AssignedTo == userID
}

// TransitionTo moves the task to status. Moving backwards is rejected;
// setting the current status again is allowed.
func (t *Task) TransitionTo(status TaskStatus) error {
	if !status.Valid() {
		return ErrInvalidTaskStatus
	}

	if status.rank() < t.Status.rank() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, status)
	}

	t.Status = status
	t.touch()
	return nil
}

// Verify marks a completed task as reviewed. Verifying twice is a no-op.
func (t *Task) Verify() error {
	if t.Status != TaskStatusCompleted {
		return ErrTaskNotCompleted
	}

	t.Verified = true
	t.touch()
	return nil
}

// Rename updates the title and description, keeping existing values for empty input.
func (t *Task) Rename(title, description *string) error {
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return ErrEmptyTaskTitle
		}
		t.Title = trimmed
	}

	if description != nil {
		trimmed := strings.TrimSpace(*description)
		if trimmed == "" {
			return ErrEmptyTaskDescription
		}
		t.Description = trimmed
	}

	t.touch()
	return nil
}

// Reassign changes the owning student.
func (t *Task) Reassign(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrEmptyTaskAssignee
	}

	t.AssignedTo = userID
	t.touch()
	return nil
}

func (t *Task) touch() {
	t.UpdatedAt = time.Now().UTC()
}
