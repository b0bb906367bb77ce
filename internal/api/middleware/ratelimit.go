package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/phrazzld/taskdesk-api/internal/api/shared"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/platform/redis"
	"github.com/phrazzld/taskdesk-api/internal/redact"
)

// Limiter decides whether another request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (redis.Decision, error)
}

// RateLimitOption customizes a RateLimitMiddleware.
type RateLimitOption func(*RateLimitMiddleware)

// WithThrottleHook registers fn to run whenever a request is rejected.
func WithThrottleHook(fn func()) RateLimitOption {
	return func(m *RateLimitMiddleware) {
		m.onThrottle = fn
	}
}

// RateLimitMiddleware rejects requests over the limiter's budget with 429.
// When the limiter itself fails the request is let through.
type RateLimitMiddleware struct {
	limiter    Limiter
	onThrottle func()
}

// NewRateLimitMiddleware creates a RateLimitMiddleware keyed by client IP.
func NewRateLimitMiddleware(limiter Limiter, opts ...RateLimitOption) *RateLimitMiddleware {
	m := &RateLimitMiddleware{limiter: limiter}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Limit wraps next with the rate check.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, err := m.limiter.Allow(r.Context(), clientKey(r))
		if err != nil {
			logger.FromContextOrDefault(r.Context(), slog.Default()).
				Warn("rate limiter unavailable, allowing request", "error", redact.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if !decision.Allowed {
			if m.onThrottle != nil {
				m.onThrottle()
			}
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
				"Too many requests", nil)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		next.ServeHTTP(w, r)
	})
}

// clientKey uses the host part of RemoteAddr, which chi's RealIP middleware
// rewrites from proxy headers.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
