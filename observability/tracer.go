package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultInstrumentationName names the tracer and meter used when the
// caller does not pick one.
const DefaultInstrumentationName = "github.com/kbukum/sdi/di"

// Span names.
const (
	SpanCall  = "di.call"
	SpanBuild = "di.build"
)

// EventCacheHit is added to the active span when a singleton or scoped
// instance is served from its cache.
const EventCacheHit = "di.cache_hit"

// Attribute keys.
const (
	AttrType      = "di.type"
	AttrLifetime  = "di.lifetime"
	AttrFunction  = "di.function"
	AttrSessionID = "di.session_id"
	AttrCached    = "di.cached"
)

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// TracerFrom returns a named tracer from tp, falling back to the global provider.
func TracerFrom(tp trace.TracerProvider, name string) trace.Tracer {
	if tp == nil {
		return Tracer(name)
	}
	return tp.Tracer(name)
}

// StartSpan starts a span on tracer with the given string attributes.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// SetSpanError records err on span and marks it failed.
func SetSpanError(span trace.Span, err error) {
	if span == nil || err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddCacheHit records a cache hit for typ on the span in ctx.
func AddCacheHit(ctx context.Context, typ string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(EventCacheHit, trace.WithAttributes(
		attribute.String(AttrType, typ),
		attribute.Bool(AttrCached, true),
	))
}
