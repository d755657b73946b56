package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore is a shared expiring key-value namespace of integer counters.
// Absent keys read as zero. Expiry is left entirely to the store.
type CounterStore interface {
	Get(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
	SetWithTTL(ctx context.Context, key string, value int64, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

type redisCounterStore struct {
	rdb redis.Cmdable
}

// NewRedisCounterStore returns a CounterStore backed by Redis.
func NewRedisCounterStore(rdb redis.Cmdable) CounterStore {
	return &redisCounterStore{rdb: rdb}
}

func (s *redisCounterStore) Get(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Incr increments in place and keeps any TTL already on the key.
func (s *redisCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.rdb.Incr(ctx, key).Result()
}

func (s *redisCounterStore) SetWithTTL(ctx context.Context, key string, value int64, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// TTL returns 0 when the key is missing or has no expiry.
func (s *redisCounterStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}
