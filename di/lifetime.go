package di

import "fmt"

// Lifetime determines how often a registered factory runs.
type Lifetime int

const (
	Transient Lifetime = iota // New instance on every resolution
	Singleton                 // One instance per injector
	Scoped                    // One instance per top-level call
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Singleton:
		return "singleton"
	case Scoped:
		return "scoped"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

func (l Lifetime) valid() bool {
	return l >= Transient && l <= Scoped
}
