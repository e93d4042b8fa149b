package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited reports that the caller exhausted its window budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps transport failures talking to Redis.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Config holds throttle tuning parameters. A zero MaxAttempts disables the
// limiter entirely.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// Limiter bounds per-IP connection attempts using Redis counters. A nil
// Limiter allows everything, so callers without Redis skip throttling.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if redisClient == nil || cfg.MaxAttempts <= 0 {
		return nil
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Allow records one attempt for ip and reports whether it fits the window
// budget. Redis outages fail open: bounding churn is not worth an outage.
func (l *Limiter) Allow(ctx context.Context, ip string) error {
	if l == nil || ip == "" {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, ipKey(ip), l.config.Window)
	if err != nil {
		return nil
	}
	if count > int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// Attempts returns the current counter for an IP. Missing keys return zero.
func (l *Limiter) Attempts(ctx context.Context, ip string) (int, error) {
	if l == nil {
		return 0, nil
	}
	count, err := l.redis.Get(ctx, ipKey(ip)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// Reset clears the counter for an IP.
func (l *Limiter) Reset(ctx context.Context, ip string) error {
	if l == nil {
		return nil
	}
	if err := l.redis.Del(ctx, ipKey(ip)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func ipKey(ip string) string {
	return "rg:rl:" + ip
}
