// Package observability holds agora's structured logging, Prometheus metrics
// and OpenTelemetry tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// base writes JSON lines to stdout so repository and service events share a
// format with the request logs.
var base = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// RepoLogging toggles the per-write repository events. Errors are logged either way.
var RepoLogging = true

type correlationKey struct{}

// WithCorrelationID stores the request id so every event for one request can be joined.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// ExtractCorrelationID returns the request id, or "" outside a request.
func ExtractCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

func withFields(attrs []any, fields map[string]interface{}) []any {
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// RepoLogger records writes and failures against one table, e.g. a follow
// edge created or a post removed.
type RepoLogger struct {
	table string
}

func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]interface{}) {
	l.write(ctx, "create", fields)
}

func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]interface{}) {
	l.write(ctx, "delete", fields)
}

func (l *RepoLogger) write(ctx context.Context, op string, fields map[string]interface{}) {
	if !RepoLogging {
		return
	}
	base.InfoContext(ctx, l.table+" "+op, withFields(l.attrs(ctx, op), fields)...)
}

// LogError reports a failed query. The caller still returns the wrapped error.
func (l *RepoLogger) LogError(ctx context.Context, err error, op string) {
	base.ErrorContext(ctx, l.table+" query failed",
		append(l.attrs(ctx, op), slog.String("error", err.Error()))...)
}

func (l *RepoLogger) attrs(ctx context.Context, op string) []any {
	return []any{
		slog.String("table", l.table),
		slog.String("operation", op),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
}

// StructuredLogger is shared by the services for domain events such as a
// registration, and for fallbacks such as a token touch that failed.
type StructuredLogger struct{}

func NewStructuredLogger() *StructuredLogger {
	return &StructuredLogger{}
}

// LogServiceCall records a completed domain event.
func (l *StructuredLogger) LogServiceCall(ctx context.Context, service, method string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("service", service),
		slog.String("method", method),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	base.InfoContext(ctx, service+"."+method, withFields(attrs, fields)...)
}

// LogServiceWarning records an error the service worked around instead of returning.
func (l *StructuredLogger) LogServiceWarning(ctx context.Context, service, method string, err error) {
	base.WarnContext(ctx, service+"."+method+" degraded",
		slog.String("service", service),
		slog.String("method", method),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}
