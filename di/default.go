package di

import "sync/atomic"

var defaultInjector atomic.Pointer[Injector]

// Default returns the process-wide Injector, creating it on first use.
// Libraries should take an *Injector instead of reaching for Default.
func Default() *Injector {
	if inj := defaultInjector.Load(); inj != nil {
		return inj
	}
	defaultInjector.CompareAndSwap(nil, New(WithName("default")))
	return defaultInjector.Load()
}

// SetDefault replaces the process-wide Injector. A nil inj makes the next
// Default call create a fresh one.
func SetDefault(inj *Injector) { defaultInjector.Store(inj) }
