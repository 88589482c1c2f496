// Package observability agrupa tracing (OpenTelemetry), métricas y el header Server-Timing.
//
// Los instrumentos viven en un Telemetry creado una sola vez. Hasta que main llama a Setup
// se usan los providers globales de otel, que sin SDK son no-op.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	servertiming "github.com/mitchellh/go-server-timing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifica tracer y meter de la aplicación.
const InstrumentationName = "github.com/Lelo88/inventory-app"

const mutationCounterName = "inventory.mutation.count"

// Telemetry tiene el tracer y los instrumentos ya creados.
type Telemetry struct {
	tracer    trace.Tracer
	mutations metric.Int64Counter
}

// New crea los instrumentos a partir de los providers dados.
func New(tp trace.TracerProvider, mp metric.MeterProvider) *Telemetry {
	mutations, err := mp.Meter(InstrumentationName).Int64Counter(
		mutationCounterName,
		metric.WithDescription("Number of persisted create/update/delete operations"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		// El meter noop nunca falla.
		mutations, _ = noop.NewMeterProvider().Meter(InstrumentationName).Int64Counter(mutationCounterName)
	}

	return &Telemetry{
		tracer:    tp.Tracer(InstrumentationName),
		mutations: mutations,
	}
}

var current atomic.Pointer[Telemetry]

func init() {
	current.Store(New(otel.GetTracerProvider(), otel.GetMeterProvider()))
}

// Use reemplaza la telemetría activa y devuelve la anterior.
func Use(telemetry *Telemetry) *Telemetry {
	return current.Swap(telemetry)
}

// Setup instala providers del SDK que exportan spans y métricas como JSON en w.
// La función devuelta hace flush y cierra ambos providers.
func Setup(w io.Writer) (func(context.Context) error, error) {
	spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(spanExporter))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)))

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	previous := Use(New(tp, mp))

	return func(ctx context.Context) error {
		Use(previous)
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

// StartQuery abre un span "db.query" y, si el request tiene Server-Timing, una métrica con el mismo nombre.
// La función devuelta cierra ambos y registra el error (si hay).
func StartQuery(ctx context.Context, operation string) (context.Context, func(error)) {
	ctx, span := current.Load().tracer.Start(ctx, "db.query", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", operation),
	))

	var timing *servertiming.Metric
	if header := servertiming.FromContext(ctx); header != nil {
		timing = header.NewMetric(operation).WithDesc("db").Start()
	}

	return ctx, func(err error) {
		if timing != nil {
			timing.Stop()
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// RecordMutation cuenta altas, bajas y modificaciones por entidad.
func RecordMutation(ctx context.Context, entity, operation string) {
	current.Load().mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
	))
}

// ServerTiming devuelve un middleware que agrega el header Server-Timing.
// Deshabilitado, es un passthrough.
func ServerTiming(enabled bool) func(http.Handler) http.Handler {
	if !enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return func(next http.Handler) http.Handler {
		return servertiming.Middleware(next, nil)
	}
}
