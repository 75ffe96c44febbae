package di

import (
	"context"
	"fmt"
	"reflect"
)

// Get resolves T as one top-level call.
//
// Example:
//
//	cat, err := di.Get[*Cat](inj)
//	if err != nil {
//	    return fmt.Errorf("failed to get cat: %w", err)
//	}
func Get[T any](inj *Injector) (T, error) {
	return GetContext[T](context.Background(), inj)
}

// GetContext is Get with a context for tracing.
func GetContext[T any](ctx context.Context, inj *Injector) (T, error) {
	var result T
	t := reflect.TypeFor[T]()
	err := inj.run(ctx, "di.Get["+t.String()+"]", func(s *session) error {
		v, err := inj.resolve(s, t)
		if err != nil {
			return err
		}
		reflect.ValueOf(&result).Elem().Set(v)
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// MustGet resolves T, panics on error.
func MustGet[T any](inj *Injector) T {
	v, err := Get[T](inj)
	if err != nil {
		panic(fmt.Sprintf("di: failed to get %s: %v", reflect.TypeFor[T](), err))
	}
	return v
}

// TryGet resolves T, returns zero value and false on any error.
// Use this when a dependency is optional.
//
// Example:
//
//	if metrics, ok := di.TryGet[MetricsClient](inj); ok {
//	    metrics.RecordEvent(...)
//	}
func TryGet[T any](inj *Injector) (T, bool) {
	v, err := Get[T](inj)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Has reports whether a factory is registered for T. It does not build anything.
func Has[T any](inj *Injector) bool {
	return inj.IsRegistered(reflect.TypeFor[T]())
}
