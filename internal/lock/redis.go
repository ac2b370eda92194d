package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"seat-occupancy-backend/internal/apperr"
)

const keyPrefix = "seat-occupancy:lock:"

// RedisLocker holds per-record locks in Redis so that several service
// instances can share one database safely.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

// NewRedisLocker wraps a connected go-redis client.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl, log: log}
}

// Acquire implements Locker. It retries until ctx is done.
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	held := make([]*redislock.Lock, 0, len(keys))

	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			// Release must not depend on the caller's ctx, which may already be done.
			if err := held[i].Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.log.WithError(err).WithField("key", held[i].Key()).Warn("failed to release lock")
			}
		}
	}

	opts := &redislock.Options{RetryStrategy: redislock.LinearBackoff(25 * time.Millisecond)}
	for _, k := range keys {
		lk, err := l.client.Obtain(ctx, keyPrefix+k, l.ttl, opts)
		if err != nil {
			releaseHeld()
			if errors.Is(err, redislock.ErrNotObtained) {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, apperr.Wrap(apperr.KindTimeout, err, "lock %q is busy", k)
			}
			return nil, fmt.Errorf("failed to obtain lock %q: %w", k, err)
		}
		held = append(held, lk)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		releaseHeld()
	}, nil
}

// Connect dials Redis and verifies the connection with a ping.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}
