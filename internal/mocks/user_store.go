package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/store"
)

// MockUserStore implements store.UserStore for testing. Unset functions
// behave like an empty store.
type MockUserStore struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	ListByRoleFn func(ctx context.Context, role domain.Role) ([]domain.UserSummary, error)

	// TxCount counts WithTx calls.
	TxCount int
}

var _ store.UserStore = (*MockUserStore)(nil)

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, store.ErrUserNotFound
}

// ListByRole implements the UserStore interface
func (m *MockUserStore) ListByRole(ctx context.Context, role domain.Role) ([]domain.UserSummary, error) {
	if m.ListByRoleFn != nil {
		return m.ListByRoleFn(ctx, role)
	}
	return []domain.UserSummary{}, nil
}

// WithTx implements the UserStore interface. The mock is returned unchanged.
func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore {
	m.TxCount++
	return m
}
