package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "hashed_password", "role", "created_at", "updated_at"})
}

func TestPostgresUserStore_Create(t *testing.T) {
	t.Parallel()

	user, err := domain.NewUser("Ada", "ada@example.com", "hash", domain.RoleStudent)
	require.NoError(t, err)

	insert := regexp.QuoteMeta("INSERT INTO users (id, name, email, hashed_password, role, created_at, updated_at)")

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectExec(insert).
			WithArgs(user.ID.String(), "Ada", "ada@example.com", "hash", "student", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgresUserStore(db).Create(context.Background(), user))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectExec(insert).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"})

		err := NewPostgresUserStore(db).Create(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("driver failure", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectExec(insert).WillReturnError(errors.New("connection reset"))

		err := NewPostgresUserStore(db).Create(context.Background(), user)
		var storeErr *store.StoreError
		assert.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "create", storeErr.Operation)
	})

	t.Run("invalid user never reaches the database", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)
		err := NewPostgresUserStore(db).Create(context.Background(), &domain.User{ID: uuid.New()})
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestPostgresUserStore_Get(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	now := time.Now().UTC()

	t.Run("by email normalizes input", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
			WithArgs("ada@example.com").
			WillReturnRows(userRows().AddRow(id.String(), "Ada", "ada@example.com", "hash", "admin", now, now))

		u, err := NewPostgresUserStore(db).GetByEmail(context.Background(), " Ada@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, domain.RoleAdmin, u.Role)
		assert.Equal(t, "hash", u.HashedPassword)
	})

	t.Run("by id not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs(id.String()).
			WillReturnRows(userRows())

		_, err := NewPostgresUserStore(db).GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("corrupt role", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WillReturnRows(userRows().AddRow(id.String(), "Ada", "ada@example.com", "hash", "moderator", now, now))

		_, err := NewPostgresUserStore(db).GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestPostgresUserStore_ListByRole(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	a, b := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email FROM users WHERE role = $1 ORDER BY name, email")).
		WithArgs("student").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(a.String(), "Ada", "ada@example.com").
			AddRow(b.String(), "Bob", "bob@example.com"))

	got, err := NewPostgresUserStore(db).ListByRole(context.Background(), domain.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserSummary{
		{ID: a, Name: "Ada", Email: "ada@example.com"},
		{ID: b, Name: "Bob", Email: "bob@example.com"},
	}, got)
}

func TestPostgresUserStore_WithTx(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).WillReturnRows(userRows())
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	_, err = NewPostgresUserStore(db).WithTx(tx).GetByEmail(context.Background(), "x@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	require.NoError(t, tx.Rollback())
}
