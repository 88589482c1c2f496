package observability

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// useTelemetry instala un Telemetry con SDK en memoria y lo restaura al terminar el test.
func useTelemetry(t *testing.T) (*tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	previous := Use(New(tp, mp))
	t.Cleanup(func() { Use(previous) })
	return recorder, reader
}

func attributeValue(attrs []attribute.KeyValue, key attribute.Key) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value.AsString()
		}
	}
	return ""
}

func mutationPoints(t *testing.T, reader *sdkmetric.ManualReader) []metricdata.DataPoint[int64] {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != mutationCounterName {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			return sum.DataPoints
		}
	}
	return nil
}

func TestStartQuery(t *testing.T) {
	t.Run("ends span with operation", func(t *testing.T) {
		recorder, _ := useTelemetry(t)

		ctx, finish := StartQuery(context.Background(), "categories.list")
		require.NotNil(t, ctx)
		finish(nil)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		require.Equal(t, "db.query", spans[0].Name())
		require.Equal(t, "categories.list", attributeValue(spans[0].Attributes(), "db.operation"))
		require.Equal(t, "postgresql", attributeValue(spans[0].Attributes(), "db.system"))
		require.Equal(t, codes.Unset, spans[0].Status().Code)
	})

	t.Run("records errors", func(t *testing.T) {
		recorder, _ := useTelemetry(t)

		_, finish := StartQuery(context.Background(), "items.get")
		finish(errors.New("db down"))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		require.Equal(t, codes.Error, spans[0].Status().Code)
		require.Equal(t, "db down", spans[0].Status().Description)
		require.Len(t, spans[0].Events(), 1)
	})
}

func TestRecordMutation(t *testing.T) {
	t.Run("counts per entity and operation", func(t *testing.T) {
		_, reader := useTelemetry(t)

		RecordMutation(context.Background(), "category", "create")
		RecordMutation(context.Background(), "category", "create")
		RecordMutation(context.Background(), "item", "delete")

		points := mutationPoints(t, reader)
		require.Len(t, points, 2)
		counts := map[string]int64{}
		for _, point := range points {
			entity, _ := point.Attributes.Value("entity")
			operation, _ := point.Attributes.Value("operation")
			counts[entity.AsString()+"."+operation.AsString()] = point.Value
		}
		require.Equal(t, map[string]int64{"category.create": 2, "item.delete": 1}, counts)
	})

	t.Run("noop providers", func(t *testing.T) {
		previous := Use(New(tracenoop.NewTracerProvider(), noop.NewMeterProvider()))
		t.Cleanup(func() { Use(previous) })

		require.NotPanics(t, func() {
			RecordMutation(context.Background(), "item", "update")
		})
	})
}

func TestSetup(t *testing.T) {
	var out bytes.Buffer
	shutdown, err := Setup(&out)
	require.NoError(t, err)

	_, finish := StartQuery(context.Background(), "items.count")
	finish(nil)
	RecordMutation(context.Background(), "item", "create")

	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, out.String(), "db.query")
	require.Contains(t, out.String(), mutationCounterName)
}

func TestServerTiming(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, finish := StartQuery(r.Context(), "items.count")
		finish(nil)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("disabled is passthrough", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ServerTiming(false)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Server-Timing"))
	})

	t.Run("enabled adds header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ServerTiming(true)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Server-Timing"), "items.count")
	})
}
