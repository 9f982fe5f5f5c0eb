package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/ports"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func spansByName(spans []sdktrace.ReadOnlySpan) map[string][]sdktrace.ReadOnlySpan {
	out := map[string][]sdktrace.ReadOnlySpan{}
	for _, s := range spans {
		out[s.Name()] = append(out[s.Name()], s)
	}
	return out
}

func TestSceneService_LoadSpans(t *testing.T) {
	rec := recordSpans(t)
	svc := newTestSceneService(t, fixtureSource(), &mockCatalog{})

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	byName := spansByName(rec.Ended())
	require.Len(t, byName["scene.load"], 1)
	require.Len(t, byName["scene.fetch_dataset"], 3)
	require.Len(t, byName["scene.fetch_catalog"], 1)

	load := byName["scene.load"][0]
	for _, child := range append(byName["scene.fetch_dataset"], byName["scene.fetch_catalog"]...) {
		assert.Equal(t, load.SpanContext().TraceID(), child.SpanContext().TraceID())
		assert.Equal(t, load.SpanContext().SpanID(), child.Parent().SpanID())
	}
	assert.Equal(t, codes.Unset, load.Status().Code)
}

func TestSceneService_FailedLoadSpanStatus(t *testing.T) {
	rec := recordSpans(t)
	src := fixtureSource()
	inner := src.loadFn
	src.loadFn = func(ctx context.Context, spec ports.DatasetSpec) (*domain.Dataset, error) {
		if spec.Source == "poi.geojson" {
			return nil, errors.New("unexpected status 404")
		}
		return inner(ctx, spec)
	}
	svc := newTestSceneService(t, src, &mockCatalog{})

	_, err := svc.Load(context.Background())
	require.Error(t, err)

	byName := spansByName(rec.Ended())
	require.Len(t, byName["scene.load"], 1)
	assert.Equal(t, codes.Error, byName["scene.load"][0].Status().Code)

	failed := 0
	for _, s := range byName["scene.fetch_dataset"] {
		if s.Status().Code == codes.Error {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}
