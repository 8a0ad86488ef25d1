package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracerProvider_ExportsSpans(t *testing.T) {
	ctx := context.Background()
	exp := tracetest.NewInMemoryExporter()

	tp, err := NewTracerProvider(ctx, "voxel-area-test", exp)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(ctx, "probe")
	span.End()
	require.NoError(t, tp.ForceFlush(ctx))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "probe", spans[0].Name)
	require.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_NoExporter(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), "voxel-area-test", nil)
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestCollectProcessStats(t *testing.T) {
	stats, err := CollectProcessStats()
	require.NoError(t, err)
	assert.Greater(t, stats.RSSMB, 0.0)
	assert.Greater(t, stats.HeapMB, 0.0)
	assert.GreaterOrEqual(t, stats.Goroutines, 1)
	assert.Contains(t, stats.String(), "rss=")
}
