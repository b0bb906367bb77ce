package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/store"
)

const taskColumns = `id, title, description, assigned_to, status, verified, version, created_at, updated_at`

// PostgresTaskStore implements store.TaskStore using PostgreSQL.
type PostgresTaskStore struct {
	db store.DBTX
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgresTaskStore
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

// WithTx returns a store bound to tx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) *PostgresTaskStore {
	return &PostgresTaskStore{db: tx}
}

// Create implements store.TaskStore.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		task.ID, task.Title, task.Description, task.AssignedTo, string(task.Status),
		task.Verified, task.Version, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: assignee does not exist", store.ErrInvalidEntity)
		}
		logger.FromContext(ctx).Error("failed to insert task", "task_id", task.ID, "error", err)
		return store.NewStoreError("task", "create", "insert failed", MapError(err))
	}

	return nil
}

// GetByID implements store.TaskStore.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	task, err := scanTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContext(ctx).Error("failed to load task", "task_id", id, "error", err)
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}

	return task, nil
}

// Find implements store.TaskStore.
func (s *PostgresTaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	where, args := filterClause(filter, "")
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks`+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list tasks", "error", err)
		return nil, store.NewStoreError("task", "find", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	out := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, store.NewStoreError("task", "find", "scan failed", err)
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "find", "iteration failed", err)
	}

	return out, nil
}

// FindWithAssignees implements store.TaskStore with a single join against users.
func (s *PostgresTaskStore) FindWithAssignees(
	ctx context.Context,
	filter store.TaskFilter,
) ([]*domain.TaskWithAssignee, error) {
	where, args := filterClause(filter, "t.")
	query := `SELECT ` + prefixed(taskColumns, "t.") + `, u.id, u.name, u.email
		FROM tasks t
		JOIN users u ON u.id = t.assigned_to` + where + `
		ORDER BY t.created_at DESC, t.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list tasks with assignees", "error", err)
		return nil, store.NewStoreError("task", "find", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	out := make([]*domain.TaskWithAssignee, 0)
	for rows.Next() {
		var (
			view   domain.TaskWithAssignee
			who    domain.UserSummary
			status string
		)
		t := &view.Task
		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &status, &t.Verified,
			&t.Version, &t.CreatedAt, &t.UpdatedAt, &who.ID, &who.Name, &who.Email)
		if err != nil {
			return nil, store.NewStoreError("task", "find", "scan failed", err)
		}
		t.Status = domain.TaskStatus(status)
		view.Assignee = &who
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "find", "iteration failed", err)
	}

	return out, nil
}

// Update implements store.TaskStore. The version guard and increment happen in
// the same statement, so concurrent writers with the same expected version
// cannot both succeed.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task, expectedVersion int) error {
	if err := task.Validate(); err != nil {
		return err
	}

	query := `UPDATE tasks
		SET title = $1, description = $2, assigned_to = $3, status = $4, verified = $5,
			version = version + 1, updated_at = $6
		WHERE id = $7`
	args := []any{
		task.Title, task.Description, task.AssignedTo, string(task.Status), task.Verified,
		time.Now().UTC(), task.ID,
	}
	if expectedVersion > 0 {
		query += ` AND version = $8`
		args = append(args, expectedVersion)
	}
	query += ` RETURNING version, updated_at`

	var (
		version   int
		updatedAt time.Time
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&version, &updatedAt)
	switch {
	case err == nil:
		task.Version = version
		task.UpdatedAt = updatedAt
		return nil
	case errors.Is(err, sql.ErrNoRows):
		if expectedVersion > 0 {
			return s.classifyMissedUpdate(ctx, task.ID)
		}
		return store.ErrTaskNotFound
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: assignee does not exist", store.ErrInvalidEntity)
	default:
		logger.FromContext(ctx).Error("failed to update task", "task_id", task.ID, "error", err)
		return store.NewStoreError("task", "update", "update failed", MapError(err))
	}
}

// classifyMissedUpdate tells a missing row apart from a stale version.
func (s *PostgresTaskStore) classifyMissedUpdate(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return store.NewStoreError("task", "update", "existence check failed", MapError(err))
	}
	if !exists {
		return store.ErrTaskNotFound
	}
	return store.ErrVersionConflict
}

// Delete implements store.TaskStore. Zero affected rows is not an error.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		logger.FromContext(ctx).Error("failed to delete task", "task_id", id, "error", err)
		return store.NewStoreError("task", "delete", "delete failed", MapError(err))
	}
	return nil
}

func scanTask(scan func(dest ...any) error) (*domain.Task, error) {
	var (
		t      domain.Task
		status string
	)
	err := scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &status, &t.Verified,
		&t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	return &t, nil
}

func filterClause(filter store.TaskFilter, alias string) (string, []any) {
	if filter.AssignedTo == nil {
		return "", nil
	}
	return ` WHERE ` + alias + `assigned_to = $1`, []any{*filter.AssignedTo}
}

func prefixed(columns, alias string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + p
	}
	return strings.Join(parts, ", ")
}
