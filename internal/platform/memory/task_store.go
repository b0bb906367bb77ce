package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/store"
)

type taskRecord struct {
	task domain.Task
	seq  uint64
}

// TaskStore is an in-memory store.TaskStore. It consults users to emulate the
// assignee foreign key and the admin listing join.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]taskRecord
	seq   uint64
	users *UserStore
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore returns an empty TaskStore whose assignees resolve against users.
func NewTaskStore(users *UserStore) *TaskStore {
	return &TaskStore{
		tasks: make(map[uuid.UUID]taskRecord),
		users: users,
	}
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if _, ok := s.users.summary(task.AssignedTo); !ok {
		return store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return store.ErrDuplicate
	}
	s.seq++
	s.tasks[task.ID] = taskRecord{task: *task, seq: s.seq}
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	t := rec.task
	return &t, nil
}

// Find implements store.TaskStore.
func (s *TaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	s.mu.RLock()
	recs := make([]taskRecord, 0, len(s.tasks))
	for _, rec := range s.tasks {
		if filter.AssignedTo != nil && rec.task.AssignedTo != *filter.AssignedTo {
			continue
		}
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]*domain.Task, len(recs))
	for i := range recs {
		t := recs[i].task
		out[i] = &t
	}
	return out, nil
}

// FindWithAssignees implements store.TaskStore.
func (s *TaskStore) FindWithAssignees(ctx context.Context, filter store.TaskFilter) ([]*domain.TaskWithAssignee, error) {
	tasks, err := s.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.TaskWithAssignee, len(tasks))
	for i, t := range tasks {
		view := &domain.TaskWithAssignee{Task: *t}
		if summary, ok := s.users.summary(t.AssignedTo); ok {
			view.Assignee = &summary
		}
		out[i] = view
	}
	return out, nil
}

// Update implements store.TaskStore. On success task.Version is the newly stored version.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task, expectedVersion int) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if _, ok := s.users.summary(task.AssignedTo); !ok {
		return store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if expectedVersion > 0 && rec.task.Version != expectedVersion {
		return store.ErrVersionConflict
	}

	updated := *task
	updated.CreatedAt = rec.task.CreatedAt
	updated.Version = rec.task.Version + 1
	rec.task = updated
	s.tasks[task.ID] = rec

	task.Version = updated.Version
	return nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	return nil
}
