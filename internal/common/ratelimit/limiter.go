// Package ratelimit implements a Redis fixed-window counter.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/metrics"
)

const keyPrefix = "ratelimit:"

// Limiter allows Limit events per Window for each key. When Redis is
// unavailable it fails open and logs the error.
type Limiter struct {
	redis  redis.Cmdable
	limit  int64
	window time.Duration
	scope  string
	logger logger.Logger
}

// Result describes one Allow decision.
type Result struct {
	Allowed    bool
	Count      int64
	Remaining  int64
	RetryAfter time.Duration
}

func NewLimiter(client redis.Cmdable, scope string, limit int, window time.Duration, log logger.Logger) *Limiter {
	return &Limiter{
		redis:  client,
		limit:  int64(limit),
		window: window,
		scope:  scope,
		logger: log.WithFields(map[string]interface{}{"component": "ratelimit", "scope": scope}),
	}
}

func (l *Limiter) key(id string) string {
	return keyPrefix + l.scope + ":" + id
}

// Allow counts one event for id.
func (l *Limiter) Allow(ctx context.Context, id string) Result {
	key := l.key(id)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request", map[string]interface{}{"error": err})
		return Result{Allowed: true}
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("failed to set rate limit window", map[string]interface{}{"error": err, "key": key})
		}
	}

	if count <= l.limit {
		return Result{Allowed: true, Count: count, Remaining: l.limit - count}
	}

	metrics.RateLimited.Inc()
	retryAfter := l.window
	if ttl, err := l.redis.TTL(ctx, key).Result(); err == nil && ttl > 0 {
		retryAfter = ttl
	} else if err == nil && ttl == -1 {
		// window key lost its expiry; restore it so the client is not locked out
		_ = l.redis.Expire(ctx, key, l.window).Err()
	}

	return Result{Allowed: false, Count: count, RetryAfter: retryAfter}
}
