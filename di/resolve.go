package di

import (
	"context"
	"fmt"
	"reflect"
	"runtime"

	"github.com/kbukum/sdi/errors"
)

// Func is a function wrapped by an Injector. Its injection plan is computed
// once, when the function is wrapped. A Func is immutable and safe for
// concurrent use.
type Func struct {
	inj  *Injector
	fn   reflect.Value
	typ  reflect.Type
	name string
	plan []reflect.Type // per parameter; nil when supplied by the caller
}

// Dependency is one injected parameter of a Func.
type Dependency struct {
	Param int
	Type  reflect.Type
}

// Resolve wraps fn so that calling it fills every parameter marked in
// markers with a resolved instance. Markers are positional; parameters
// beyond the marker list are supplied by the caller.
func (inj *Injector) Resolve(fn any, markers ...Marker) (*Func, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, errors.New(errors.ErrCodeInvalidArgument, fmt.Sprintf("resolve requires a function, got %T", fn))
	}
	return inj.wrap(v, funcName(v), markers)
}

// MustResolve is like Resolve but panics on error.
func (inj *Injector) MustResolve(fn any, markers ...Marker) *Func {
	f, err := inj.Resolve(fn, markers...)
	if err != nil {
		panic(err)
	}
	return f
}

func (inj *Injector) wrap(v reflect.Value, name string, markers []Marker) (*Func, error) {
	t := v.Type()
	if t.IsVariadic() {
		return nil, errors.InvalidMarker(name, t.NumIn()-1, "variadic parameters are not supported")
	}
	if len(markers) > t.NumIn() {
		return nil, errors.InvalidMarker(name, t.NumIn(),
			fmt.Sprintf("%d markers given for %d parameters", len(markers), t.NumIn()))
	}

	plan := make([]reflect.Type, t.NumIn())
	for i, m := range markers {
		if m.typ == nil {
			continue
		}
		if !m.typ.AssignableTo(t.In(i)) {
			return nil, errors.InvalidMarker(name, i,
				fmt.Sprintf("%s is not assignable to %s", m.typ, t.In(i)))
		}
		plan[i] = m.typ
	}

	return &Func{
		inj:  inj,
		fn:   v,
		typ:  t,
		name: name,
		plan: plan,
	}, nil
}

// Name returns the runtime name of the wrapped function.
func (f *Func) Name() string { return f.name }

// Type returns the type of the wrapped function.
func (f *Func) Type() reflect.Type { return f.typ }

// Dependencies returns the injected parameters in parameter order.
func (f *Func) Dependencies() []Dependency {
	deps := make([]Dependency, 0, len(f.plan))
	for i, t := range f.plan {
		if t != nil {
			deps = append(deps, Dependency{Param: i, Type: t})
		}
	}
	return deps
}

func (f *Func) dependencyTypes() []reflect.Type {
	types := make([]reflect.Type, 0, len(f.plan))
	for _, t := range f.plan {
		if t != nil {
			types = append(types, t)
		}
	}
	return types
}

// Call invokes the wrapped function. See CallContext.
func (f *Func) Call(args ...any) ([]any, error) {
	return f.CallContext(context.Background(), args...)
}

// CallContext invokes the wrapped function as one top-level call.
//
// Arguments fill parameters positionally. An explicit argument is used as-is
// even for a marked parameter, and the matching factory is not invoked. A
// marked parameter with no argument, or with Auto, is resolved. The function's
// results are returned unchanged, including a trailing error result.
//
// ctx carries the trace parent only; it is not checked for cancellation.
func (f *Func) CallContext(ctx context.Context, args ...any) ([]any, error) {
	var out []reflect.Value
	err := f.inj.run(ctx, f.name, func(s *session) error {
		var err error
		out, err = f.call(s, args)
		return err
	})
	if err != nil {
		return nil, err
	}

	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}

func (f *Func) call(s *session, args []any) ([]reflect.Value, error) {
	if len(args) > len(f.plan) {
		return nil, errors.InvalidArgument(f.name, len(f.plan),
			fmt.Sprintf("%d arguments given for %d parameters", len(args), len(f.plan)))
	}

	in := make([]reflect.Value, len(f.plan))
	for i, dep := range f.plan {
		if i < len(args) && args[i] != Auto {
			v, err := argValue(args[i], f.typ.In(i))
			if err != nil {
				return nil, errors.InvalidArgument(f.name, i, err.Error())
			}
			in[i] = v
			continue
		}
		if dep == nil {
			return nil, errors.MissingArgument(f.name, i)
		}
		v, err := f.inj.resolve(s, dep)
		if err != nil {
			return nil, err
		}
		in[i] = v
	}
	return f.fn.Call(in), nil
}

// Invoke calls f and returns its first result as R. A trailing non-nil error
// result of f is returned as the error.
func Invoke[R any](f *Func, args ...any) (R, error) {
	return InvokeContext[R](context.Background(), f, args...)
}

// InvokeContext is Invoke with a context for tracing.
func InvokeContext[R any](ctx context.Context, f *Func, args ...any) (R, error) {
	var zero R
	if f.typ.NumOut() == 0 {
		return zero, errors.TypeMismatch(reflect.TypeFor[R]().String(), "no result")
	}

	out, err := f.CallContext(ctx, args...)
	if err != nil {
		return zero, err
	}
	if last := f.typ.NumOut() - 1; f.typ.Out(last) == errorType && out[last] != nil {
		return zero, out[last].(error)
	}
	if out[0] == nil {
		return zero, nil
	}
	r, ok := out[0].(R)
	if !ok {
		return zero, errors.TypeMismatch(reflect.TypeFor[R]().String(), fmt.Sprintf("%T", out[0]))
	}
	return r, nil
}

func argValue(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		if !nillable(t) {
			return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", t)
		}
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), t)
	}
	return v, nil
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

func funcName(v reflect.Value) string {
	if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
		return fn.Name()
	}
	return v.Type().String()
}
