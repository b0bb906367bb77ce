package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role controls which operations a user is eligible for.
type Role string

// Known roles. A user's role is fixed at creation.
const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Common validation errors
var (
	ErrEmptyUserID         = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyName           = fmt.Errorf("%w: name cannot be empty", ErrValidation)
	ErrEmptyEmail          = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrEmptyHashedPassword = fmt.Errorf("%w: hashed password cannot be empty", ErrValidation)
)

// ParseRole converts a label into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleStudent:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// User is a registered account. The password is stored only as a bcrypt hash.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserSummary is the public projection of a user.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// NewUser creates a new User with a fresh ID and timestamps.
// The caller must hash the password before calling; hashedPassword is stored as is.
func NewUser(name, email, hashedPassword string, role Role) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(name),
		Email:          NormalizeEmail(email),
		HashedPassword: hashedPassword,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Name == "" {
		return ErrEmptyName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !ValidEmail(u.Email) {
		return ErrInvalidEmail
	}

	if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}

	if !u.Role.Valid() {
		return ErrInvalidRole
	}

	return nil
}

// Summary returns the public projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail trims and lower-cases an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email is a bare address (no display name).
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}

// IsValidationError reports whether err is any kind of domain validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// AuthContext identifies the authenticated caller of an operation.
type AuthContext struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the caller holds the admin role.
func (a AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}
