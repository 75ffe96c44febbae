package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status attribute values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the OpenTelemetry instruments recorded by an injector.
// A nil *Metrics records nothing.
type Metrics struct {
	resolutionTotal metric.Int64Counter
	factoryCalls    metric.Int64Counter
	factoryDuration metric.Float64Histogram
	callTotal       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	resolutionTotal, err := meter.Int64Counter("di.resolution.total",
		metric.WithDescription("Total number of type resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolution.total counter: %w", err)
	}

	factoryCalls, err := meter.Int64Counter("di.factory.calls",
		metric.WithDescription("Total number of factory invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.factory.calls counter: %w", err)
	}

	factoryDuration, err := meter.Float64Histogram("di.factory.duration",
		metric.WithDescription("Duration of factory invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.factory.duration histogram: %w", err)
	}

	callTotal, err := meter.Int64Counter("di.call.total",
		metric.WithDescription("Total number of resolve-wrapped function calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.call.total counter: %w", err)
	}

	return &Metrics{
		resolutionTotal: resolutionTotal,
		factoryCalls:    factoryCalls,
		factoryDuration: factoryDuration,
		callTotal:       callTotal,
	}, nil
}

// RecordResolution records one resolution of typ.
func (m *Metrics) RecordResolution(ctx context.Context, typ, lifetime, status string) {
	if m == nil {
		return
	}
	m.resolutionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", typ),
		attribute.String("lifetime", lifetime),
		attribute.String("status", status),
	))
}

// RecordFactoryCall records one factory invocation and how long it took.
func (m *Metrics) RecordFactoryCall(ctx context.Context, typ, lifetime string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("type", typ),
		attribute.String("lifetime", lifetime),
	)
	m.factoryCalls.Add(ctx, 1, attrs)
	m.factoryDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCall records one top-level call of a resolve-wrapped function.
func (m *Metrics) RecordCall(ctx context.Context, function, status string) {
	if m == nil {
		return
	}
	m.callTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("function", function),
		attribute.String("status", status),
	))
}
