package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewMetricsNoop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordResolution(ctx, "*app.Cat", "singleton", StatusOK)
	metrics.RecordFactoryCall(ctx, "*app.Cat", "singleton", time.Millisecond)
	metrics.RecordCall(ctx, "app.play", StatusOK)
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var metrics *Metrics
	ctx := context.Background()
	// should not panic
	metrics.RecordResolution(ctx, "T", "transient", StatusError)
	metrics.RecordFactoryCall(ctx, "T", "transient", time.Millisecond)
	metrics.RecordCall(ctx, "f", StatusOK)
}

func TestMetricsExported(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	ctx := context.Background()
	metrics.RecordFactoryCall(ctx, "*app.Cat", "singleton", 5*time.Millisecond)
	metrics.RecordFactoryCall(ctx, "*app.Cat", "singleton", 5*time.Millisecond)
	metrics.RecordResolution(ctx, "*app.Cat", "singleton", StatusOK)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	calls := sumOf(t, rm, "di.factory.calls")
	if calls != 2 {
		t.Errorf("expected 2 factory calls, got %d", calls)
	}
	resolutions := sumOf(t, rm, "di.resolution.total")
	if resolutions != 1 {
		t.Errorf("expected 1 resolution, got %d", resolutions)
	}
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, expected Sum[int64]", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestTracer(t *testing.T) {
	if Tracer("test-tracer") == nil {
		t.Fatal("expected non-nil tracer")
	}
	if TracerFrom(nil, "test-tracer") == nil {
		t.Fatal("expected fallback tracer")
	}
}

func TestMeter(t *testing.T) {
	if Meter("test-meter") == nil {
		t.Fatal("expected non-nil meter")
	}
}

func TestStartSpanRecordsAttributes(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	tracer := TracerFrom(tp, DefaultInstrumentationName)
	_, span := StartSpan(context.Background(), tracer, SpanBuild,
		attribute.String(AttrType, "*app.Cat"),
		attribute.String(AttrLifetime, "singleton"),
	)
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != SpanBuild {
		t.Errorf("expected span %q, got %q", SpanBuild, spans[0].Name)
	}
	found := false
	for _, kv := range spans[0].Attributes {
		if kv.Key == AttrType && kv.Value.AsString() == "*app.Cat" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s attribute, got %v", AttrType, spans[0].Attributes)
	}
}

func TestSetSpanError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	_, span := StartSpan(context.Background(), tp.Tracer("test"), SpanCall)
	SetSpanError(span, fmt.Errorf("test error"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status.Code)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestSetSpanErrorNoop(t *testing.T) {
	_, span := StartSpan(context.Background(), Tracer("noop"), SpanCall)
	defer span.End()
	// Should not panic with a non-recording span or nil error
	SetSpanError(span, fmt.Errorf("ignored"))
	SetSpanError(span, nil)
	SetSpanError(nil, fmt.Errorf("ignored"))
}

func TestAddCacheHit(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	ctx, span := StartSpan(context.Background(), tp.Tracer("test"), SpanBuild)
	AddCacheHit(ctx, "*app.Cat")
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	events := spans[0].Events
	if len(events) != 1 || events[0].Name != EventCacheHit {
		t.Fatalf("expected one %s event, got %v", EventCacheHit, events)
	}
	attrs := attribute.NewSet(events[0].Attributes...)
	if v, ok := attrs.Value(AttrType); !ok || v.AsString() != "*app.Cat" {
		t.Errorf("expected %s=*app.Cat, got %v", AttrType, events[0].Attributes)
	}
	if v, ok := attrs.Value(AttrCached); !ok || !v.AsBool() {
		t.Errorf("expected %s=true, got %v", AttrCached, events[0].Attributes)
	}

	// should not panic without a span
	AddCacheHit(context.Background(), "*app.Cat")
}

func TestSpanNameConstants(t *testing.T) {
	if SpanCall != "di.call" {
		t.Errorf("unexpected SpanCall %q", SpanCall)
	}
	if SpanBuild != "di.build" {
		t.Errorf("unexpected SpanBuild %q", SpanBuild)
	}
}
