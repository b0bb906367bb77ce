package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/domain"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token carrying the user's ID and role.
	// Returns the token string or an error if token generation fails.
	GenerateToken(ctx context.Context, userID uuid.UUID, role domain.Role) (string, error)

	// IssueToken is GenerateToken that also reports when the token expires.
	IssueToken(ctx context.Context, userID uuid.UUID, role domain.Role) (*IssuedToken, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns ErrExpiredToken once the expiry instant is reached and ErrInvalidToken
	// for any other failure (bad signature, wrong algorithm, malformed claims).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// IssuedToken is a signed token together with its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific fields.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Role is the role the user held when the token was issued.
	Role domain.Role `json:"role,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
