package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/store"
)

// UserStore is an in-memory store.UserStore.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]domain.User
	byEmail map[string]uuid.UUID
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore returns an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[uuid.UUID]domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return store.ErrEmailExists
	}
	if _, exists := s.byID[user.ID]; exists {
		return store.ErrDuplicate
	}

	u := *user
	u.Email = email
	s.byID[u.ID] = u
	s.byEmail[email] = u.ID
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail implements store.UserStore. Lookup is case-insensitive.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	u := s.byID[id]
	return &u, nil
}

// ListByRole implements store.UserStore.
func (s *UserStore) ListByRole(ctx context.Context, role domain.Role) ([]domain.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserSummary, 0)
	for _, u := range s.byID {
		if u.Role == role {
			out = append(out, u.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

// WithTx returns s; the in-memory store has no transactions.
func (s *UserStore) WithTx(*sql.Tx) store.UserStore {
	return s
}

func (s *UserStore) summary(id uuid.UUID) (domain.UserSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return domain.UserSummary{}, false
	}
	return u.Summary(), true
}
