package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Result describes the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// Limiter is a fixed-window request limiter keyed by caller-chosen strings.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	Reset(ctx context.Context, key string) error
	WithLimit(maxRequests int64, window time.Duration) Limiter
}

// RedisLimiter implements Limiter on a shared Redis instance so limits
// hold across replicas.
type RedisLimiter struct {
	client      *redis.Client
	prefix      string
	window      time.Duration
	maxRequests int64
}

func NewRedisLimiter(client *redis.Client, window time.Duration, maxRequests int64) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		prefix:      "ratelimit:",
		window:      window,
		maxRequests: maxRequests,
	}
}

// WithLimit derives a limiter with different bounds sharing the same
// client and key prefix.
func (rl *RedisLimiter) WithLimit(maxRequests int64, window time.Duration) Limiter {
	return &RedisLimiter{
		client:      rl.client,
		prefix:      rl.prefix,
		window:      window,
		maxRequests: maxRequests,
	}
}

// Allow counts the request against the key's current window. Counters
// expire at the window boundary, so idle keys clean themselves up.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	redisKey := rl.prefix + key
	windowStart := time.Now().Truncate(rl.window)
	resetAt := windowStart.Add(rl.window)

	pipe := rl.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireAt(ctx, redisKey, resetAt)

	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limiter error: %w", err)
	}

	count := incr.Val()
	remaining := rl.maxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= rl.maxRequests,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the counter for a key.
func (rl *RedisLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, rl.prefix+key).Err()
}

// Window returns the configured window duration.
func (rl *RedisLimiter) Window() time.Duration {
	return rl.window
}

// MaxRequests returns the per-window request budget.
func (rl *RedisLimiter) MaxRequests() int64 {
	return rl.maxRequests
}
