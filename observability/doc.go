// Package observability provides OpenTelemetry tracing and metrics for
// dependency resolution.
//
// The package never installs providers. Applications configure the global
// OpenTelemetry providers (or pass their own) and hand the resulting meter
// and tracer provider to the injector.
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("billing"))
//	inj := di.New(di.WithMetrics(metrics))
//
// Tracing:
//
//	inj := di.New(di.WithTracerProvider(tp))
//	results, err := handler.CallContext(ctx)
package observability
