package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// CommentThrottle counts engagement limiter decisions by outcome
	// (allowed, throttled, store_error).
	CommentThrottle = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_comment_throttle_total",
		Help: "Comment rate limiter decisions by outcome",
	}, []string{"outcome"})

	// FeedAssembly records feed assembly latency by mode.
	FeedAssembly = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_feed_assembly_seconds",
		Help:    "Feed assembly latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	// SessionTokens counts token operations (issue, revoke, revoke_miss, resolve_miss).
	SessionTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_session_tokens_total",
		Help: "Session token operations",
	}, []string{"op"})
)

// ObserveFeed returns a function that records feed latency when called (e.g. defer).
func ObserveFeed(mode string) func() {
	start := time.Now()
	return func() {
		FeedAssembly.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}
}
