package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/store"
)

const userColumns = `id, name, email, hashed_password, role, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db store.DBTX
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection that should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Name, user.Email, user.HashedPassword, string(user.Role),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("user email already exists", "user_id", user.ID)
			return store.ErrEmailExists
		}
		log.Error("failed to insert user", "user_id", user.ID, "error", err)
		return store.NewStoreError("user", "create", "insert failed", MapError(err))
	}

	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return s.scanUser(ctx, row, "get_by_id")
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, domain.NormalizeEmail(email))
	return s.scanUser(ctx, row, "get_by_email")
}

// ListByRole implements store.UserStore.ListByRole. Only the public columns are selected.
func (s *PostgresUserStore) ListByRole(ctx context.Context, role domain.Role) ([]domain.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email FROM users WHERE role = $1 ORDER BY name, email`, string(role))
	if err != nil {
		logger.FromContext(ctx).Error("failed to list users", "role", role, "error", err)
		return nil, store.NewStoreError("user", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.UserSummary, 0)
	for rows.Next() {
		var u domain.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, store.NewStoreError("user", "list", "scan failed", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("user", "list", "iteration failed", err)
	}

	return out, nil
}

func (s *PostgresUserStore) scanUser(ctx context.Context, row *sql.Row, op string) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContext(ctx).Error("failed to load user", "operation", op, "error", err)
		return nil, store.NewStoreError("user", op, "query failed", MapError(err))
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, store.NewStoreError("user", op, fmt.Sprintf("stored role %q", role), store.ErrInvalidEntity)
	}
	u.Role = parsed

	return &u, nil
}
