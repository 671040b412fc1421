// Package ratelimit throttles login attempts with a fixed-window counter in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flowtrack/flowtrack-api/internal/logger"
)

// Limiter decides whether another attempt identified by key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Result describes the state of a key's window after an attempt.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type redisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter allows limit attempts per key within each window.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) Limiter {
	return &redisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow counts the attempt and reports whether it fits in the current window.
// A key found without a TTL gets one, so a failed EXPIRE heals on the next hit.
// Redis failures are logged and the attempt is allowed.
func (l *redisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	redisKey := fmt.Sprintf("rl:%s:%s", l.prefix, key)
	log := logger.Get()

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.TTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("key", redisKey).Msg("rate limiter unavailable, allowing request")
		return Result{Allowed: true, Remaining: l.limit}, err
	}

	count := incr.Val()
	retryAfter := ttl.Val()
	if retryAfter < 0 {
		retryAfter = l.window
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			log.Warn().Err(err).Str("key", redisKey).Msg("rate limiter failed to set window")
		}
	}

	if int(count) > l.limit {
		return Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	return Result{Allowed: true, Remaining: l.limit - int(count)}, nil
}

type noopLimiter struct{}

// NewNoopLimiter returns a Limiter that allows everything.
func NewNoopLimiter() Limiter {
	return noopLimiter{}
}

func (noopLimiter) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true}, nil
}
