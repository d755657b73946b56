package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ExtractCorrelationID(ctx))
	assert.Equal(t, "req-1", ExtractCorrelationID(WithCorrelationID(ctx, "req-1")))
}

func TestSpan_ZeroValueIsSafe(t *testing.T) {
	var s Span
	assert.NotPanics(t, func() {
		s.AddAttributes(attribute.String("feed.mode", "discover"))
		s.SetError(errors.New("boom"))
		s.End()
	})
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "agora-test"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	span, ctx := NewSpan(context.Background(), "feed.list")
	assert.NotNil(t, ctx)
	span.SetError(nil)
	span.End()
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(1).Description(), "AlwaysOn")
	assert.Contains(t, newSampler(0.5).Description(), "ParentBased")
}
