package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/events"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/store"
)

// TaskPatch carries the fields of a partial task update. Nil fields are left
// unchanged. A positive ExpectedVersion makes the update conditional.
type TaskPatch struct {
	Title           *string
	Description     *string
	AssignedTo      *uuid.UUID
	Status          *domain.TaskStatus
	ExpectedVersion int
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return !p.touchesContent() && p.Status == nil
}

func (p TaskPatch) touchesContent() bool {
	return p.Title != nil || p.Description != nil || p.AssignedTo != nil
}

// TaskService manages the task lifecycle. Every method checks the caller
// against the policy table before it changes anything.
type TaskService interface {
	// CreateTask assigns a new task to a student. Admin only.
	CreateTask(
		ctx context.Context,
		ac domain.AuthContext,
		title, description string,
		assignedTo uuid.UUID,
	) (*domain.Task, error)

	// ListTasks returns every task with its assignee for admins, and the
	// caller's own tasks for students. Newest first.
	ListTasks(ctx context.Context, ac domain.AuthContext) ([]*domain.TaskWithAssignee, error)

	// GetTask returns one task to an admin or its assignee.
	GetTask(ctx context.Context, ac domain.AuthContext, id uuid.UUID) (*domain.Task, error)

	// UpdateTask applies patch. Admins may change content, the assignee may
	// change only the status.
	UpdateTask(ctx context.Context, ac domain.AuthContext, id uuid.UUID, patch TaskPatch) (*domain.Task, error)

	// SetStatus moves the caller's own task forward in its lifecycle.
	SetStatus(
		ctx context.Context,
		ac domain.AuthContext,
		id uuid.UUID,
		status domain.TaskStatus,
		expectedVersion int,
	) (*domain.Task, error)

	// VerifyTask marks a completed task as reviewed. Admin only.
	VerifyTask(ctx context.Context, ac domain.AuthContext, id uuid.UUID) (*domain.Task, error)

	// DeleteTask removes a task. Admin only. Unknown IDs succeed.
	DeleteTask(ctx context.Context, ac domain.AuthContext, id uuid.UUID) error
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	taskStore store.TaskStore
	userStore store.UserStore
	emitter   events.EventEmitter
	policy    Policy
	logger    *slog.Logger
}

var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a new TaskService. emitter may be nil, in which case
// no lifecycle events are produced.
func NewTaskService(
	taskStore store.TaskStore,
	userStore store.UserStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*TaskServiceImpl, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskServiceImpl{
		taskStore: taskStore,
		userStore: userStore,
		emitter:   emitter,
		policy:    DefaultPolicy,
		logger:    logger.With("component", "task_service"),
	}, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *TaskServiceImpl) CreateTask(
	ctx context.Context,
	ac domain.AuthContext,
	title, description string,
	assignedTo uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.policy.Authorize(OpCreateTask, ac, nil); err != nil {
		log.Debug("create task denied", "user_id", ac.UserID, "role", ac.Role)
		return nil, err
	}

	task, err := domain.NewTask(title, description, assignedTo)
	if err != nil {
		return nil, err
	}

	if err := s.checkAssignee(ctx, assignedTo); err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			// the assignee disappeared between the check and the insert
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to save task", "error", err)
		return nil, NewServiceError(string(OpCreateTask), "failed to save task", err)
	}

	log.Info("task created", "task_id", task.ID, "assigned_to", task.AssignedTo)
	s.emit(ctx, events.TypeTaskCreated, ac, task.ID, task)
	return task, nil
}

// ListTasks implements TaskService.ListTasks.
func (s *TaskServiceImpl) ListTasks(
	ctx context.Context,
	ac domain.AuthContext,
) ([]*domain.TaskWithAssignee, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.policy.Authorize(OpListTasks, ac, nil); err != nil {
		return nil, err
	}

	if ac.IsAdmin() {
		tasks, err := s.taskStore.FindWithAssignees(ctx, store.TaskFilter{})
		if err != nil {
			log.Error("failed to list tasks", "error", err)
			return nil, NewServiceError(string(OpListTasks), "failed to list tasks", err)
		}
		return tasks, nil
	}

	owner := ac.UserID
	tasks, err := s.taskStore.Find(ctx, store.TaskFilter{AssignedTo: &owner})
	if err != nil {
		log.Error("failed to list tasks", "error", err, "user_id", ac.UserID)
		return nil, NewServiceError(string(OpListTasks), "failed to list tasks", err)
	}

	views := make([]*domain.TaskWithAssignee, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, &domain.TaskWithAssignee{Task: *t})
	}
	return views, nil
}

// GetTask implements TaskService.GetTask.
func (s *TaskServiceImpl) GetTask(ctx context.Context, ac domain.AuthContext, id uuid.UUID) (*domain.Task, error) {
	task, err := s.loadTask(ctx, OpGetTask, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(OpGetTask, ac, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask.
func (s *TaskServiceImpl) UpdateTask(
	ctx context.Context,
	ac domain.AuthContext,
	id uuid.UUID,
	patch TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	eventType := events.TypeTaskUpdated
	task, err := s.mutate(ctx, OpUpdateTask, ac, id, patch.ExpectedVersion, func(task *domain.Task) error {
		if !ac.IsAdmin() {
			if patch.touchesContent() {
				log.Debug("student attempted content update", "task_id", id, "user_id", ac.UserID)
				return ErrForbidden
			}
			eventType = events.TypeTaskStatusChanged
			return task.TransitionTo(*patch.Status)
		}

		// status belongs to the assignee
		if patch.Status != nil {
			return ErrForbidden
		}
		if err := task.Rename(patch.Title, patch.Description); err != nil {
			return err
		}
		if patch.AssignedTo != nil && *patch.AssignedTo != task.AssignedTo {
			if err := s.checkAssignee(ctx, *patch.AssignedTo); err != nil {
				return err
			}
			return task.Reassign(*patch.AssignedTo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task updated", "task_id", task.ID, "version", task.Version)
	s.emit(ctx, eventType, ac, task.ID, task)
	return task, nil
}

// SetStatus implements TaskService.SetStatus.
func (s *TaskServiceImpl) SetStatus(
	ctx context.Context,
	ac domain.AuthContext,
	id uuid.UUID,
	status domain.TaskStatus,
	expectedVersion int,
) (*domain.Task, error) {
	var from domain.TaskStatus
	task, err := s.mutate(ctx, OpSetStatus, ac, id, expectedVersion, func(task *domain.Task) error {
		from = task.Status
		return task.TransitionTo(status)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task status changed",
		"task_id", task.ID,
		"from", from,
		"to", task.Status)
	s.emit(ctx, events.TypeTaskStatusChanged, ac, task.ID, task)
	return task, nil
}

// VerifyTask implements TaskService.VerifyTask.
func (s *TaskServiceImpl) VerifyTask(ctx context.Context, ac domain.AuthContext, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// checked before the lookup so non-admins learn nothing about the task
	if err := s.policy.Authorize(OpVerifyTask, ac, nil); err != nil {
		log.Debug("verify task denied", "task_id", id, "user_id", ac.UserID)
		return nil, err
	}

	changed := true
	task, err := s.mutate(ctx, OpVerifyTask, ac, id, 0, func(task *domain.Task) error {
		if task.Verified {
			changed = false
			return errUnchanged
		}
		return task.Verify()
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return task, nil
	}

	log.Info("task verified", "task_id", task.ID)
	s.emit(ctx, events.TypeTaskVerified, ac, task.ID, task)
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, ac domain.AuthContext, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.policy.Authorize(OpDeleteTask, ac, nil); err != nil {
		log.Debug("delete task denied", "task_id", id, "user_id", ac.UserID)
		return err
	}

	if err := s.taskStore.Delete(ctx, id); err != nil {
		log.Error("failed to delete task", "error", err, "task_id", id)
		return NewServiceError(string(OpDeleteTask), "failed to delete task", err)
	}

	log.Info("task deleted", "task_id", id)
	s.emit(ctx, events.TypeTaskDeleted, ac, id, nil)
	return nil
}

// checkAssignee requires userID to be an existing student.
func (s *TaskServiceImpl) checkAssignee(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return store.ErrUserNotFound
		}
		return NewServiceError("check_assignee", "failed to look up assignee", err)
	}
	if user.Role != domain.RoleStudent {
		return ErrInvalidAssignee
	}
	return nil
}

func (s *TaskServiceImpl) loadTask(ctx context.Context, op Operation, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).
			Error("failed to load task", "error", err, "task_id", id)
		return nil, NewServiceError(string(op), "failed to load task", err)
	}
	return task, nil
}

func (s *TaskServiceImpl) save(ctx context.Context, op Operation, task *domain.Task, expectedVersion int) error {
	err := s.taskStore.Update(ctx, task, expectedVersion)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrVersionConflict):
		return store.ErrVersionConflict
	case errors.Is(err, store.ErrTaskNotFound):
		return store.ErrTaskNotFound
	case errors.Is(err, store.ErrInvalidEntity):
		return store.ErrUserNotFound
	default:
		logger.FromContextOrDefault(ctx, s.logger).
			Error("failed to save task", "error", err, "task_id", task.ID)
		return NewServiceError(string(op), "failed to save task", err)
	}
}

// errUnchanged lets a mutation skip the write when the task is already in
// the requested state.
var errUnchanged = errors.New("task unchanged")

// mutate loads the task, authorizes op, applies fn and writes the result
// guarded by the version that was read. A caller-supplied version must match
// exactly; without one, a write that lost a race is retried once against the
// fresh row so a concurrent change is never overwritten with stale columns.
func (s *TaskServiceImpl) mutate(
	ctx context.Context,
	op Operation,
	ac domain.AuthContext,
	id uuid.UUID,
	expectedVersion int,
	fn func(*domain.Task) error,
) (*domain.Task, error) {
	attempts := 1
	if expectedVersion == 0 {
		attempts = 2
	}

	for attempt := 1; ; attempt++ {
		task, err := s.loadTask(ctx, op, id)
		if err != nil {
			return nil, err
		}
		if err := s.policy.Authorize(op, ac, task); err != nil {
			logger.FromContextOrDefault(ctx, s.logger).
				Debug("task operation denied", "operation", op, "task_id", id, "user_id", ac.UserID)
			return nil, err
		}
		if err := checkVersion(task, expectedVersion); err != nil {
			return nil, err
		}

		read := task.Version
		if err := fn(task); err != nil {
			if errors.Is(err, errUnchanged) {
				return task, nil
			}
			return nil, err
		}

		err = s.save(ctx, op, task, read)
		if errors.Is(err, store.ErrVersionConflict) && attempt < attempts {
			logger.FromContextOrDefault(ctx, s.logger).
				Debug("retrying task write after concurrent update", "operation", op, "task_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		return task, nil
	}
}

// checkVersion fails fast when the caller read a stale version.
func checkVersion(task *domain.Task, expected int) error {
	if expected > 0 && task.Version != expected {
		return store.ErrVersionConflict
	}
	return nil
}

// emit publishes a lifecycle event. The write has already committed, so
// failures are logged and never returned.
func (s *TaskServiceImpl) emit(
	ctx context.Context,
	eventType string,
	ac domain.AuthContext,
	taskID uuid.UUID,
	task *domain.Task,
) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var payload interface{}
	if task != nil {
		payload = task
	}
	event, err := events.NewEvent(eventType, taskID, ac.UserID, payload)
	if err != nil {
		log.Error("failed to build event", "error", err, "type", eventType)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit event",
			"error", err,
			"type", eventType,
			"task_id", taskID)
	}
}
