package di

import "reflect"

// Marker tags a parameter position as injected. Markers are positional:
// marker k applies to parameter k of the wrapped function.
type Marker struct {
	typ reflect.Type
}

// Pass is the zero Marker. The parameter is supplied by the caller.
var Pass Marker

// Inject returns a marker requesting the type T. The type does not need to be
// registered yet; lookup happens when the wrapped function is called.
func Inject[T any]() Marker {
	return Marker{typ: reflect.TypeFor[T]()}
}

// InjectType returns a marker requesting t. A nil t is equivalent to Pass.
func InjectType(t reflect.Type) Marker {
	return Marker{typ: t}
}

// Type returns the requested type, or nil for Pass.
func (m Marker) Type() reflect.Type { return m.typ }

// IsZero reports whether m is Pass.
func (m Marker) IsZero() bool { return m.typ == nil }

func (m Marker) String() string {
	if m.typ == nil {
		return "di.Pass"
	}
	return "di.Inject[" + m.typ.String() + "]"
}

type autoArg struct{}

// Auto is a call argument meaning "resolve this position". It lets a caller
// supply a later parameter while an earlier marked one is still injected:
//
//	f.Call(di.Auto, customDog)
var Auto any = autoArg{}
