package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	assignee := uuid.New()
	task, err := NewTask(" T1 ", "write the report", assignee)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, "T1", task.Title)
	assert.Equal(t, assignee, task.AssignedTo)
	assert.Equal(t, TaskStatusNotStarted, task.Status)
	assert.False(t, task.Verified)
	assert.Equal(t, 1, task.Version)

	_, err = NewTask("", "desc", assignee)
	assert.ErrorIs(t, err, ErrEmptyTaskTitle)

	_, err = NewTask("T1", "  ", assignee)
	assert.ErrorIs(t, err, ErrEmptyTaskDescription)

	_, err = NewTask("T1", "desc", uuid.Nil)
	assert.ErrorIs(t, err, ErrEmptyTaskAssignee)
}

func TestParseTaskStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    TaskStatus
		wantErr bool
	}{
		{in: "not_started", want: TaskStatusNotStarted},
		{in: "in_progress", want: TaskStatusInProgress},
		{in: "completed", want: TaskStatusCompleted},
		{in: " Completed ", want: TaskStatusCompleted},
		{in: "incomplete", want: TaskStatusNotStarted},
		{in: "complete", want: TaskStatusCompleted},
		{in: "done", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTaskStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTaskStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskTransitionTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    TaskStatus
		to      TaskStatus
		wantErr error
	}{
		{name: "start", from: TaskStatusNotStarted, to: TaskStatusInProgress},
		{name: "finish", from: TaskStatusInProgress, to: TaskStatusCompleted},
		{name: "skip ahead", from: TaskStatusNotStarted, to: TaskStatusCompleted},
		{name: "same status", from: TaskStatusInProgress, to: TaskStatusInProgress},
		{name: "backwards", from: TaskStatusCompleted, to: TaskStatusInProgress, wantErr: ErrInvalidTransition},
		{name: "reset", from: TaskStatusInProgress, to: TaskStatusNotStarted, wantErr: ErrInvalidTransition},
		{name: "unknown", from: TaskStatusNotStarted, to: "archived", wantErr: ErrInvalidTaskStatus},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			task, err := NewTask("T", "D", uuid.New())
			require.NoError(t, err)
			task.Status = tt.from

			err = task.TransitionTo(tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, task.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, task.Status)
		})
	}
}

func TestTaskVerify(t *testing.T) {
	t.Parallel()

	task, err := NewTask("T", "D", uuid.New())
	require.NoError(t, err)

	assert.ErrorIs(t, task.Verify(), ErrTaskNotCompleted)
	assert.False(t, task.Verified)

	require.NoError(t, task.TransitionTo(TaskStatusCompleted))
	require.NoError(t, task.Verify())
	assert.True(t, task.Verified)

	// verifying again is harmless
	require.NoError(t, task.Verify())
	assert.NoError(t, task.Validate())
}

func TestTaskIsAssignedTo(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	task, err := NewTask("T", "D", owner)
	require.NoError(t, err)

	assert.True(t, task.IsAssignedTo(owner))
	// identity comparison is by value, not by how the ID was produced
	assert.True(t, task.IsAssignedTo(uuid.MustParse(owner.String())))
	assert.False(t, task.IsAssignedTo(uuid.New()))
	assert.False(t, task.IsAssignedTo(uuid.Nil))
}

func TestTaskRenameAndReassign(t *testing.T) {
	t.Parallel()

	task, err := NewTask("T", "D", uuid.New())
	require.NoError(t, err)

	title := " New title "
	require.NoError(t, task.Rename(&title, nil))
	assert.Equal(t, "New title", task.Title)
	assert.Equal(t, "D", task.Description)

	empty := ""
	assert.ErrorIs(t, task.Rename(nil, &empty), ErrEmptyTaskDescription)

	next := uuid.New()
	require.NoError(t, task.Reassign(next))
	assert.Equal(t, next, task.AssignedTo)
	assert.ErrorIs(t, task.Reassign(uuid.Nil), ErrEmptyTaskAssignee)
}
