package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registration errors
const (
	// ErrCodeMissingReturnType indicates a factory declares no result.
	ErrCodeMissingReturnType ErrorCode = "MISSING_RETURN_TYPE"
	// ErrCodeInvalidFactory indicates a factory has an unsupported shape.
	ErrCodeInvalidFactory ErrorCode = "INVALID_FACTORY"
	// ErrCodeInvalidMarker indicates an injection marker does not fit its parameter.
	ErrCodeInvalidMarker ErrorCode = "INVALID_MARKER"
)

// Resolution errors
const (
	// ErrCodeUnregisteredType indicates no factory is registered for a requested type.
	ErrCodeUnregisteredType ErrorCode = "UNREGISTERED_TYPE"
	// ErrCodeCyclicDependency indicates a type depends on itself through its factories.
	ErrCodeCyclicDependency ErrorCode = "CYCLIC_DEPENDENCY"
	// ErrCodeFactoryFailed indicates a factory returned an error.
	ErrCodeFactoryFailed ErrorCode = "FACTORY_FAILED"
	// ErrCodeTypeMismatch indicates a resolved value is not of the expected type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Call errors
const (
	// ErrCodeInvalidArgument indicates an explicit argument cannot be passed to its parameter.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeMissingArgument indicates a parameter has neither an argument nor a marker.
	ErrCodeMissingArgument ErrorCode = "MISSING_ARGUMENT"
)

// A failed singleton build leaves its slot empty, so a later resolution
// runs the factory again.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeFactoryFailed: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
