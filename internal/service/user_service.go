package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/service/auth"
	"github.com/phrazzld/taskdesk-api/internal/store"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	Role      domain.Role
	Name      string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// UserService provides account operations: registration, login and listings.
type UserService interface {
	// Register creates a student account. Duplicate emails fail with store.ErrEmailExists.
	Register(ctx context.Context, name, email, password string) (*domain.UserSummary, error)

	// Login checks credentials and issues a token. It fails with ErrUnknownEmail
	// or ErrInvalidCredentials and issues nothing in that case.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// ListStudents returns the public projection of every student. Admin only.
	ListStudents(ctx context.Context, ac domain.AuthContext) ([]domain.UserSummary, error)

	// EnsureAdmin creates an admin account unless one with that email exists.
	// It fails with store.ErrEmailExists when the email belongs to a student.
	EnsureAdmin(ctx context.Context, name, email, password string) (*domain.UserSummary, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore  store.UserStore
	jwtService auth.JWTService
	hasher     auth.PasswordHasher
	verifier   auth.PasswordVerifier
	policy     Policy
	db         *sql.DB
	logger     *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService.
// db may be nil when the store is not backed by a database; writes then run
// directly against userStore instead of inside a transaction.
func NewUserService(
	userStore store.UserStore,
	jwtService auth.JWTService,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	db *sql.DB,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if jwtService == nil {
		return nil, domain.NewValidationError("jwtService", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		userStore:  userStore,
		jwtService: jwtService,
		hasher:     hasher,
		verifier:   verifier,
		policy:     DefaultPolicy,
		db:         db,
		logger:     logger.With("component", "user_service"),
	}, nil
}

// Register implements UserService.Register.
func (s *UserServiceImpl) Register(
	ctx context.Context,
	name, email, password string,
) (*domain.UserSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.newUser(name, email, password, domain.RoleStudent)
	if err != nil {
		log.Debug("rejected registration", "error", err)
		return nil, err
	}

	err = s.withUserStore(ctx, func(ctx context.Context, users store.UserStore) error {
		return users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register with existing email")
			return nil, store.ErrEmailExists
		}
		log.Error("failed to save user", "error", err)
		return nil, NewServiceError("register", "failed to save user", err)
	}

	log.Info("user registered", "user_id", user.ID, "role", user.Role)
	summary := user.Summary()
	return &summary, nil
}

// Login implements UserService.Login.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return nil, ErrUnknownEmail
		}
		log.Error("failed to look up user for login", "error", err)
		return nil, NewServiceError("login", "failed to look up user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	issued, err := s.jwtService.IssueToken(ctx, user.ID, user.Role)
	if err != nil {
		log.Error("failed to issue token", "error", err, "user_id", user.ID)
		return nil, NewServiceError("login", "failed to issue token", err)
	}

	log.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResult{
		Token:     issued.Token,
		Role:      user.Role,
		Name:      user.Name,
		UserID:    user.ID,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// ListStudents implements UserService.ListStudents.
func (s *UserServiceImpl) ListStudents(
	ctx context.Context,
	ac domain.AuthContext,
) ([]domain.UserSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.policy.Authorize(OpListStudents, ac, nil); err != nil {
		log.Debug("list students denied", "user_id", ac.UserID, "role", ac.Role)
		return nil, err
	}

	students, err := s.userStore.ListByRole(ctx, domain.RoleStudent)
	if err != nil {
		log.Error("failed to list students", "error", err)
		return nil, NewServiceError("list_students", "failed to list students", err)
	}
	return students, nil
}

// EnsureAdmin implements UserService.EnsureAdmin.
func (s *UserServiceImpl) EnsureAdmin(
	ctx context.Context,
	name, email, password string,
) (*domain.UserSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var summary domain.UserSummary
	err := s.withUserStore(ctx, func(ctx context.Context, users store.UserStore) error {
		existing, err := users.GetByEmail(ctx, domain.NormalizeEmail(email))
		switch {
		case err == nil:
			if !existing.IsAdmin() {
				return store.ErrEmailExists
			}
			summary = existing.Summary()
			log.Info("admin already exists", "user_id", existing.ID)
			return nil
		case !errors.Is(err, store.ErrUserNotFound):
			return err
		}

		admin, err := s.newUser(name, email, password, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if err := users.Create(ctx, admin); err != nil {
			return err
		}
		summary = admin.Summary()
		log.Info("admin created", "user_id", admin.ID)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) || domain.IsValidationError(err) {
			return nil, err
		}
		log.Error("failed to ensure admin", "error", err)
		return nil, NewServiceError("ensure_admin", "failed to ensure admin", err)
	}

	return &summary, nil
}

// newUser validates the plaintext input, hashes the password and builds the user.
func (s *UserServiceImpl) newUser(name, email, password string, role domain.Role) (*domain.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrEmptyName
	}
	if strings.TrimSpace(email) == "" {
		return nil, domain.ErrEmptyEmail
	}
	if !domain.ValidEmail(domain.NormalizeEmail(email)) {
		return nil, domain.ErrInvalidEmail
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return domain.NewUser(name, email, hash, role)
}

// withUserStore runs fn in a transaction when the service has a database,
// and directly against the store otherwise.
func (s *UserServiceImpl) withUserStore(
	ctx context.Context,
	fn func(ctx context.Context, users store.UserStore) error,
) error {
	if s.db == nil {
		return fn(ctx, s.userStore)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.userStore.WithTx(tx))
	})
}
