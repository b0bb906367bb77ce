package auth

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskdesk-api/internal/domain"
)

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")
)

// Password policy errors.
var (
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, MaxPasswordLength)
)
