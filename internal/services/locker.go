package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sjperalta/fintera-assurance/pkg/logger"
)

// Locker serializes submissions that share a duplicate key
type Locker interface {
	Obtain(ctx context.Context, key string) (release func(), err error)
}

// NoopLocker is used when Redis is not configured; the database unique index still applies
type NoopLocker struct{}

func (NoopLocker) Obtain(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}

// RedisLocker obtains short-lived locks through bsm/redislock
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewRedisLocker creates a locker on top of rdb
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl}
}

// Obtain takes the lock for key, retrying briefly before giving up
func (l *RedisLocker) Obtain(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	} else if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	return func() {
		// Release on a fresh context: the request may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.Warn("Failed to release lock", "key", key, "error", err)
		}
	}, nil
}

// ConnectRedis parses url and verifies the server answers
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

func contractLockKey(category, contractNumber, periodKey string) string {
	return fmt.Sprintf("ledger:contract:%s:%s:%s", category, contractNumber, periodKey)
}
