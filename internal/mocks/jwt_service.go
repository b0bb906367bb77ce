package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID, role domain.Role) (string, error)
	IssueTokenFn    func(ctx context.Context, userID uuid.UUID, role domain.Role) (*auth.IssuedToken, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Token       string
	ExpiresAt   time.Time
	Err         error
	ValidateErr error
	Claims      *auth.Claims
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID, role domain.Role) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID, role)
	}
	return m.Token, m.Err
}

// IssueToken implements the auth.JWTService interface
func (m *MockJWTService) IssueToken(
	ctx context.Context,
	userID uuid.UUID,
	role domain.Role,
) (*auth.IssuedToken, error) {
	if m.IssueTokenFn != nil {
		return m.IssueTokenFn(ctx, userID, role)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &auth.IssuedToken{Token: m.Token, ExpiresAt: m.ExpiresAt}, nil
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}
