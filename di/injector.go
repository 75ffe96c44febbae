package di

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/sdi/config"
	"github.com/kbukum/sdi/errors"
	"github.com/kbukum/sdi/logger"
	"github.com/kbukum/sdi/observability"
)

var errorType = reflect.TypeFor[error]()

// Injector owns the registry of factories keyed by the type they produce.
// It is safe for concurrent use.
type Injector struct {
	name    string
	entries map[reflect.Type]*entry
	mu      sync.RWMutex

	log     *logger.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// entry is one registration. The singleton cache slot lives here, so
// replacing the entry also resets the slot. built is readable without mu;
// instance is guarded by mu and set before built is stored.
type entry struct {
	key        reflect.Type
	lifetime   Lifetime
	factory    *Func
	returnsErr bool

	mu       sync.RWMutex
	instance reflect.Value
	built    atomic.Bool
}

// RegistrationInfo describes a registered type for introspection.
type RegistrationInfo struct {
	Type         reflect.Type
	Lifetime     Lifetime
	Factory      string
	Dependencies []reflect.Type
	Built        bool // singleton instance exists
}

// Option configures an Injector.
type Option func(*injectorOptions)

type injectorOptions struct {
	name           string
	log            *logger.Logger
	metrics        *observability.Metrics
	tracerProvider trace.TracerProvider
	tracerName     string
}

// WithName names the injector in log lines.
func WithName(name string) Option {
	return func(o *injectorOptions) { o.name = name }
}

// WithLogger sets the logger. The injector logs through a "di" component child.
func WithLogger(l *logger.Logger) Option {
	return func(o *injectorOptions) { o.log = l }
}

// WithMetrics records resolution metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *injectorOptions) { o.metrics = m }
}

// WithTracerProvider traces calls and factory builds on tp instead of the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *injectorOptions) { o.tracerProvider = tp }
}

// New creates an empty Injector.
func New(opts ...Option) *Injector {
	o := injectorOptions{tracerName: observability.DefaultInstrumentationName}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger()
	}
	log := o.log.WithComponent("di")
	if o.name != "" {
		log = log.WithFields(logger.Fields("injector", o.name))
	}

	return &Injector{
		name:    o.name,
		entries: make(map[reflect.Type]*entry),
		log:     log,
		metrics: o.metrics,
		tracer:  observability.TracerFrom(o.tracerProvider, o.tracerName),
	}
}

// NewFromConfig creates an Injector whose logger and telemetry follow cfg.
// Metrics and tracing use the global OpenTelemetry providers when enabled.
func NewFromConfig(cfg config.Config) (*Injector, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []Option{
		WithName(cfg.Name),
		WithLogger(logger.New(&cfg.Logging, cfg.Name)),
		func(o *injectorOptions) { o.tracerName = cfg.Telemetry.InstrumentationName },
	}
	if cfg.Telemetry.Metrics {
		m, err := observability.NewMetrics(observability.Meter(cfg.Telemetry.InstrumentationName))
		if err != nil {
			return nil, fmt.Errorf("di: creating metrics: %w", err)
		}
		opts = append(opts, WithMetrics(m))
	}
	if !cfg.Telemetry.Tracing {
		opts = append(opts, WithTracerProvider(noop.NewTracerProvider()))
	}
	return New(opts...), nil
}

// Name returns the injector name given with WithName.
func (inj *Injector) Name() string { return inj.name }

// Transient registers factory under its return type. The factory runs on
// every resolution.
func (inj *Injector) Transient(factory any, markers ...Marker) error {
	return inj.Register(Transient, factory, markers...)
}

// Singleton registers factory under its return type. The factory runs at
// most once and its result is shared by every later resolution.
func (inj *Injector) Singleton(factory any, markers ...Marker) error {
	return inj.Register(Singleton, factory, markers...)
}

// Scoped registers factory under its return type. The factory runs once
// per top-level call.
func (inj *Injector) Scoped(factory any, markers ...Marker) error {
	return inj.Register(Scoped, factory, markers...)
}

// Register records factory under its first result type with the given
// lifetime. The factory must have the shape func(deps...) T or
// func(deps...) (T, error), and every parameter must carry a marker.
// A later registration for the same type replaces the earlier one.
// Register never invokes the factory.
func (inj *Injector) Register(lifetime Lifetime, factory any, markers ...Marker) error {
	v := reflect.ValueOf(factory)
	if v.Kind() != reflect.Func {
		return errors.InvalidFactory(fmt.Sprintf("%T", factory), "factory must be a function")
	}
	if v.IsNil() {
		return errors.InvalidFactory(fmt.Sprintf("%T", factory), "factory is a nil function")
	}
	name := funcName(v)
	if !lifetime.valid() {
		return errors.InvalidFactory(name, fmt.Sprintf("unknown %s", lifetime))
	}

	t := v.Type()
	switch {
	case t.NumOut() == 0:
		return errors.MissingReturnType(name)
	case t.NumOut() > 2:
		return errors.InvalidFactory(name, "factory must return T or (T, error)")
	case t.Out(0) == errorType:
		return errors.InvalidFactory(name, "first result must be the provided type, not error")
	case t.NumOut() == 2 && t.Out(1) != errorType:
		return errors.InvalidFactory(name, fmt.Sprintf("second result must be error, got %s", t.Out(1)))
	case t.IsVariadic():
		return errors.InvalidFactory(name, "variadic factories are not supported")
	}

	f, err := inj.wrap(v, name, markers)
	if err != nil {
		return err
	}
	for i, dep := range f.plan {
		if dep == nil {
			return errors.InvalidFactory(name, fmt.Sprintf("parameter %d (%s) has no injection marker", i, t.In(i)))
		}
	}

	e := &entry{
		key:        t.Out(0),
		lifetime:   lifetime,
		factory:    f,
		returnsErr: t.NumOut() == 2,
	}

	inj.mu.Lock()
	_, replaced := inj.entries[e.key]
	inj.entries[e.key] = e
	inj.mu.Unlock()

	if inj.log.DebugEnabled() {
		inj.log.Debug("factory registered", logger.Fields(
			logger.FieldType, e.key.String(),
			logger.FieldLifetime, lifetime.String(),
			logger.FieldFactory, name,
			"replaced", replaced,
		))
	}
	return nil
}

// Provide registers factory and returns it unchanged, so a registration can
// sit in a variable declaration:
//
//	var newCat = di.MustProvide(inj, di.Singleton, func() *Cat { return &Cat{} })
func Provide[F any](inj *Injector, lifetime Lifetime, factory F, markers ...Marker) (F, error) {
	if err := inj.Register(lifetime, factory, markers...); err != nil {
		var zero F
		return zero, err
	}
	return factory, nil
}

// MustProvide is like Provide but panics on error.
func MustProvide[F any](inj *Injector, lifetime Lifetime, factory F, markers ...Marker) F {
	f, err := Provide(inj, lifetime, factory, markers...)
	if err != nil {
		panic(err)
	}
	return f
}

// Registrations returns info about all registered types, sorted by type name.
// It never waits on a singleton that is being built.
func (inj *Injector) Registrations() []RegistrationInfo {
	inj.mu.RLock()
	entries := make([]*entry, 0, len(inj.entries))
	for _, e := range inj.entries {
		entries = append(entries, e)
	}
	inj.mu.RUnlock()

	result := make([]RegistrationInfo, 0, len(entries))
	for _, e := range entries {
		result = append(result, RegistrationInfo{
			Type:         e.key,
			Lifetime:     e.lifetime,
			Factory:      e.factory.name,
			Dependencies: e.factory.dependencyTypes(),
			Built:        e.built.Load(),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Type.String() < result[j].Type.String()
	})
	return result
}

// IsRegistered reports whether a factory is registered for t.
func (inj *Injector) IsRegistered(t reflect.Type) bool {
	return inj.lookup(t) != nil
}

func (inj *Injector) lookup(t reflect.Type) *entry {
	inj.mu.RLock()
	defer inj.mu.RUnlock()
	return inj.entries[t]
}

// resolve returns the instance for t on the chain of s.
func (inj *Injector) resolve(s *session, t reflect.Type) (reflect.Value, error) {
	e := inj.lookup(t)
	if e == nil {
		err := errors.UnregisteredType(t.String())
		inj.metrics.RecordResolution(s.ctx, t.String(), "", observability.StatusError)
		return reflect.Value{}, err
	}
	if err := s.enter(t); err != nil {
		inj.metrics.RecordResolution(s.ctx, t.String(), e.lifetime.String(), observability.StatusError)
		return reflect.Value{}, err
	}
	defer s.leave()

	var (
		v   reflect.Value
		err error
	)
	switch e.lifetime {
	case Singleton:
		v, err = inj.singleton(s, e)
	case Scoped:
		v, err = inj.scoped(s, e)
	default:
		v, err = inj.build(s, e)
	}

	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError
	}
	inj.metrics.RecordResolution(s.ctx, t.String(), e.lifetime.String(), status)
	return v, err
}

// singleton returns the cached instance, building it under the entry's
// write lock when the slot is empty. A failed build leaves the slot empty.
func (inj *Injector) singleton(s *session, e *entry) (reflect.Value, error) {
	if e.built.Load() {
		e.mu.RLock()
		v := e.instance
		e.mu.RUnlock()
		observability.AddCacheHit(s.ctx, e.key.String())
		return v, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double-check pattern
	if e.built.Load() {
		observability.AddCacheHit(s.ctx, e.key.String())
		return e.instance, nil
	}

	v, err := inj.build(s, e)
	if err != nil {
		return reflect.Value{}, err
	}
	e.instance = v
	e.built.Store(true)

	if inj.log.DebugEnabled() {
		inj.log.Debug("singleton built", logger.Fields(
			logger.FieldType, e.key.String(),
			logger.FieldSessionID, s.id,
		))
	}
	return v, nil
}

func (inj *Injector) scoped(s *session, e *entry) (reflect.Value, error) {
	if v, ok := s.scopedInstance(e.key); ok {
		observability.AddCacheHit(s.ctx, e.key.String())
		return v, nil
	}
	v, err := inj.build(s, e)
	if err != nil {
		return reflect.Value{}, err
	}
	s.storeScoped(e.key, v)
	return v, nil
}

// build invokes the factory of e, resolving its dependencies on the same chain.
func (inj *Injector) build(s *session, e *entry) (reflect.Value, error) {
	parent := s.ctx
	ctx, span := observability.StartSpan(parent, inj.tracer, observability.SpanBuild,
		attribute.String(observability.AttrType, e.key.String()),
		attribute.String(observability.AttrLifetime, e.lifetime.String()),
		attribute.String(observability.AttrSessionID, s.id),
	)
	defer span.End()
	s.ctx = ctx
	defer func() { s.ctx = parent }()

	start := time.Now()
	out, err := e.factory.call(s, nil)
	if err != nil {
		observability.SetSpanError(span, err)
		return reflect.Value{}, err
	}
	inj.metrics.RecordFactoryCall(ctx, e.key.String(), e.lifetime.String(), time.Since(start))

	if e.returnsErr && !out[1].IsNil() {
		cause, _ := out[1].Interface().(error)
		ferr := errors.FactoryFailed(e.key.String(), cause).WithDetail("factory", e.factory.name)
		observability.SetSpanError(span, ferr)
		if inj.log.DebugEnabled() {
			fields := logger.ErrorFields("build", cause)
			fields[logger.FieldType] = e.key.String()
			fields[logger.FieldFactory] = e.factory.name
			fields[logger.FieldSessionID] = s.id
			inj.log.Debug("factory failed", fields)
		}
		return reflect.Value{}, ferr
	}
	return out[0], nil
}

// run executes fn as one top-level call named function.
func (inj *Injector) run(ctx context.Context, function string, fn func(*session) error) error {
	s := newSession(ctx)
	ctx, span := observability.StartSpan(s.ctx, inj.tracer, observability.SpanCall,
		attribute.String(observability.AttrFunction, function),
		attribute.String(observability.AttrSessionID, s.id),
	)
	defer span.End()
	s.ctx = ctx

	start := time.Now()
	err := fn(s)

	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError
		observability.SetSpanError(span, err)
	}
	inj.metrics.RecordCall(ctx, function, status)

	if inj.log.DebugEnabled() {
		fields := logger.MergeWithDuration(logger.Fields(
			logger.FieldFunction, function,
			logger.FieldSessionID, s.id,
		), time.Since(start))
		if err != nil {
			fields[logger.FieldError] = err.Error()
		}
		inj.log.Debug("call resolved", fields)
	}
	return err
}
