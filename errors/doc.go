// Package errors provides the structured error type returned by the
// injector.
//
// Every failure carries a machine-readable ErrorCode, a human-readable
// message naming the offending factory, type or parameter, optional details
// and an optional cause. Errors compare by code, so callers can match them
// with the standard library:
//
//	if stderrors.Is(err, errors.ErrUnregisteredType) {
//	    // register the missing factory
//	}
package errors
