package auth

import (
	"time"
)

// TestSecret is a signing secret long enough for NewJWTService.
const TestSecret = "test-jwt-secret-that-is-32-chars-long"

// NewTestJWTService creates a JWT service with a controllable clock.
// A nil timeFunc uses time.Now.
func NewTestJWTService(secret string, lifetime time.Duration, timeFunc func() time.Time) JWTService {
	if timeFunc == nil {
		timeFunc = time.Now
	}
	return &hmacJWTService{
		signingKey:    []byte(secret),
		tokenLifetime: lifetime,
		timeFunc:      timeFunc,
	}
}
