package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"agora/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// tombstone marks a deleted entry. It never parses as an id.
const tombstone = "revoked"

// IDAside reads a cached id under key, falling back to load on a miss and storing
// the result for ttl. A zero id from load is treated as "not found" and not cached.
// A tombstoned key resolves to zero without calling load, and a load that races a
// Tombstone never overwrites it. Redis failures are logged and bypassed; a
// non-positive ttl disables caching.
func IDAside(ctx context.Context, rdb redis.Cmdable, key string, ttl time.Duration, load func() (uint, error)) (uint, error) {
	if rdb == nil || ttl <= 0 {
		return load()
	}

	raw, err := rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if raw == tombstone {
			return 0, nil
		}
		if id, convErr := strconv.ParseUint(raw, 10, 64); convErr == nil {
			return uint(id), nil
		}
	case !errors.Is(err, redis.Nil):
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	id, err := load()
	if err != nil || id == 0 {
		return id, err
	}

	stored, err := rdb.SetNX(ctx, key, strconv.FormatUint(uint64(id), 10), ttl).Result()
	switch {
	case err != nil:
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	case !stored:
		// Someone wrote first; a tombstone means the entry was deleted mid-load.
		if cur, err := rdb.Get(ctx, key).Result(); err == nil && cur == tombstone {
			return 0, nil
		}
	}
	return id, nil
}

// Tombstone replaces key with a deletion marker for ttl so in-flight IDAside
// loads cannot restore it. A non-positive ttl falls back to Invalidate.
func Tombstone(ctx context.Context, rdb redis.Cmdable, key string, ttl time.Duration) {
	if rdb == nil || ttl <= 0 {
		Invalidate(ctx, rdb, key)
		return
	}
	if err := rdb.Set(ctx, key, tombstone, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache tombstone failed", "key", key, "error", err)
	}
}

// Invalidate deletes key, logging failures.
func Invalidate(ctx context.Context, rdb redis.Cmdable, key string) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, key).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidate failed", "key", key, "error", err)
	}
}
