package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles login attempts per account.
type LoginLimiter interface {
	// Allow reports whether another attempt for the key may proceed.
	Allow(ctx context.Context, key string) (bool, error)
}

type redisLoginLimiter struct {
	client *redis.Client
	window time.Duration
	max    int
}

// NewRedisLoginLimiter builds a windowed attempt counter on Redis. The
// counter is atomic (INCR) so concurrent logins are counted exactly.
func NewRedisLoginLimiter(client *redis.Client, window time.Duration, max int) LoginLimiter {
	if window <= 0 {
		window = 5 * time.Minute
	}
	if max <= 0 {
		max = 10
	}
	return &redisLoginLimiter{client: client, window: window, max: max}
}

func (l *redisLoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "login_attempts:" + strings.ToLower(strings.TrimSpace(key))
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		// Fail open: an unreachable limiter must not lock everyone out.
		return true, err
	}
	if count == 1 {
		_ = l.client.Expire(ctx, redisKey, l.window).Err()
	}
	return count <= int64(l.max), nil
}

// noopLoginLimiter permits everything; used when Redis is not configured.
type noopLoginLimiter struct{}

// NewNoopLoginLimiter returns a limiter that never throttles.
func NewNoopLoginLimiter() LoginLimiter {
	return noopLoginLimiter{}
}

func (noopLoginLimiter) Allow(context.Context, string) (bool, error) {
	return true, nil
}
