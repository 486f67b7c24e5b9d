package redisinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/go-blog-nosql/internal/config"
	"github.com/go-blog-nosql/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:attempts:"

// NewClient connects to cfg.RedisAddr and pings it.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}

// AttemptLimiter is a fixed-window counter keyed by subject (an email).
// The window starts at the first attempt and is not extended by later ones.
type AttemptLimiter struct {
	redis  *redis.Client
	max    int64
	window time.Duration
}

func NewAttemptLimiter(client *redis.Client, maxAttempts int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{redis: client, max: int64(maxAttempts), window: window}
}

func (l *AttemptLimiter) key(subject string) string {
	return keyPrefix + subject
}

// Allow records one attempt and returns domain.ErrTooManyAttempts once the
// window's budget is spent. Other errors mean Redis itself failed.
// INCR and EXPIRE NX run in one MULTI so a counter never outlives its window.
func (l *AttemptLimiter) Allow(ctx context.Context, subject string) error {
	k := l.key(subject)
	var incr *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("attempt limiter incr: %w", err)
	}
	if count := incr.Val(); count > l.max {
		return fmt.Errorf("%d attempts for %s: %w", count, subject, domain.ErrTooManyAttempts)
	}
	return nil
}

func (l *AttemptLimiter) Reset(ctx context.Context, subject string) error {
	if err := l.redis.Del(ctx, l.key(subject)).Err(); err != nil {
		return fmt.Errorf("attempt limiter reset: %w", err)
	}
	return nil
}
