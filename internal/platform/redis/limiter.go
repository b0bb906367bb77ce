package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// FixedWindowLimiter allows at most limit hits per key per window.
type FixedWindowLimiter struct {
	rdb    goredis.Scripter
	prefix string
	limit  int
	window time.Duration
}

// NewFixedWindowLimiter creates a limiter whose keys are namespaced by prefix.
func NewFixedWindowLimiter(rdb goredis.Scripter, prefix string, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// The first hit in a window starts its expiry; INCR and PEXPIRE run atomically.
var fixedWindowScript = goredis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// Allow records a hit for key and reports whether it is within the limit.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := fixedWindowScript.Run(ctx, l.rdb, []string{l.prefix + ":" + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit script returned %d values", len(res))
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}

	if count > l.limit {
		return Decision{Allowed: false, Remaining: 0, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Remaining: l.limit - count}, nil
}
