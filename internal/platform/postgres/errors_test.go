package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskdesk-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("connection refused")

	tests := []struct {
		name    string
		err     error
		wantIs  error
		leakage string
	}{
		{name: "no rows", err: sql.ErrNoRows, wantIs: store.ErrNotFound},
		{
			name:    "unique",
			err:     &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key", Detail: "Key (email)=(ada@example.com)"},
			wantIs:  store.ErrDuplicate,
			leakage: "ada@example.com",
		},
		{
			name:   "foreign key",
			err:    &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_assigned_to_fkey"},
			wantIs: store.ErrInvalidEntity,
		},
		{
			name:   "check",
			err:    &pgconn.PgError{Code: checkViolationCode, ConstraintName: "tasks_status_check"},
			wantIs: store.ErrInvalidEntity,
		},
		{
			name:   "not null",
			err:    &pgconn.PgError{Code: notNullViolationCode, ColumnName: "title"},
			wantIs: store.ErrInvalidEntity,
		},
		{name: "unmapped", err: plain, wantIs: plain},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mapped := MapError(tt.err)
			assert.ErrorIs(t, mapped, tt.wantIs)
			if tt.leakage != "" {
				assert.NotContains(t, mapped.Error(), tt.leakage)
			}
		})
	}

	assert.NoError(t, MapError(nil))
}

func TestViolationHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("x")))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: foreignKeyViolationCode}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: uniqueViolationCode}))
}
