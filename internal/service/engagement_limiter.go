package service

import (
	"context"
	"fmt"
	"time"

	"agora/internal/cache"
	"agora/internal/observability"
)

// Decision is the outcome of one TryConsume call.
type Decision struct {
	Allowed bool
	// Count is the user's count in the current window after this call.
	Count int64
	// RetryAfter is the time left in the window when the call was rejected.
	RetryAfter time.Duration
}

// EngagementLimiter gates comment creation with a fixed count-and-expire window
// per user. The read-then-write is not atomic: concurrent requests from one user
// may occasionally let an extra comment through.
type EngagementLimiter struct {
	store  cache.CounterStore
	limit  int64
	window time.Duration
}

func NewEngagementLimiter(store cache.CounterStore, limit int, window time.Duration) *EngagementLimiter {
	return &EngagementLimiter{store: store, limit: int64(limit), window: window}
}

// TryConsume counts one engagement for userID if the user is under the limit.
// Rejected attempts leave the counter and its expiry untouched. Store failures
// are logged and the engagement is allowed.
func (l *EngagementLimiter) TryConsume(ctx context.Context, userID uint) (Decision, error) {
	key := cache.CommentCountKey(userID)

	count, err := l.store.Get(ctx, key)
	if err != nil {
		return l.failOpen(ctx, userID, err), nil
	}

	if count >= l.limit {
		retry, err := l.store.TTL(ctx, key)
		if err != nil {
			retry = l.window
		}
		observability.CommentThrottle.WithLabelValues("throttled").Inc()
		return Decision{Allowed: false, Count: count, RetryAfter: retry}, nil
	}

	if count == 0 {
		if err := l.store.SetWithTTL(ctx, key, 1, l.window); err != nil {
			return l.failOpen(ctx, userID, err), nil
		}
		observability.CommentThrottle.WithLabelValues("allowed").Inc()
		return Decision{Allowed: true, Count: 1}, nil
	}

	next, err := l.store.Incr(ctx, key)
	if err != nil {
		return l.failOpen(ctx, userID, err), nil
	}
	if next == 1 {
		// The window expired between the read and the increment.
		if err := l.store.SetWithTTL(ctx, key, 1, l.window); err != nil {
			return l.failOpen(ctx, userID, err), nil
		}
	}
	observability.CommentThrottle.WithLabelValues("allowed").Inc()
	return Decision{Allowed: true, Count: next}, nil
}

var serviceLog = observability.NewStructuredLogger()

func (l *EngagementLimiter) failOpen(ctx context.Context, userID uint, err error) Decision {
	observability.CommentThrottle.WithLabelValues("store_error").Inc()
	serviceLog.LogServiceWarning(ctx, "engagement_limiter", "Check", fmt.Errorf("user %d allowed without counter: %w", userID, err))
	return Decision{Allowed: true}
}
