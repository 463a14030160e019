package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrLimited     = errors.New("auth rate limited")
	ErrUnavailable = errors.New("auth limiter unavailable")
)

// AuthLimiter throttles credential endpoints (register/login) with a plain
// INCR+EXPIRE counter in Redis, keyed per client IP. Being in Redis it is
// shared across processes, unlike the in-memory request limiter.
type AuthLimiter struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewAuthLimiter(redisClient *redis.Client, maxAttempts int, window time.Duration) *AuthLimiter {
	return &AuthLimiter{
		redis:       redisClient,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Enforce counts one attempt for key and reports ErrLimited once the window
// budget is spent. A nil limiter allows everything, so Redis stays optional.
func (l *AuthLimiter) Enforce(ctx context.Context, key string) error {
	if l == nil {
		return nil
	}

	count, err := l.redis.Incr(ctx, "authrl:"+key).Result()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, "authrl:"+key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if count > int64(l.maxAttempts) {
		return ErrLimited
	}

	return nil
}
