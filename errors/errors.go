package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the error type returned by every injector operation.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Sentinels for matching with errors.Is. Only the code is compared.
var (
	ErrMissingReturnType = New(ErrCodeMissingReturnType, "factory declares no return type")
	ErrInvalidFactory    = New(ErrCodeInvalidFactory, "invalid factory")
	ErrInvalidMarker     = New(ErrCodeInvalidMarker, "invalid injection marker")
	ErrUnregisteredType  = New(ErrCodeUnregisteredType, "type is not registered")
	ErrCyclicDependency  = New(ErrCodeCyclicDependency, "cyclic dependency")
	ErrFactoryFailed     = New(ErrCodeFactoryFailed, "factory failed")
	ErrTypeMismatch      = New(ErrCodeTypeMismatch, "type mismatch")
	ErrInvalidArgument   = New(ErrCodeInvalidArgument, "invalid argument")
	ErrMissingArgument   = New(ErrCodeMissingArgument, "missing argument")
)

// --- Constructors ---

// MissingReturnType creates a new AppError for a factory without a result.
func MissingReturnType(factory string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingReturnType,
		Message: fmt.Sprintf("factory '%s' requires a return type", factory),
		Details: map[string]any{"factory": factory},
	}
}

// InvalidFactory creates a new AppError for a factory that cannot be registered.
func InvalidFactory(factory, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidFactory,
		Message: fmt.Sprintf("factory '%s' is invalid: %s", factory, reason),
		Details: map[string]any{"factory": factory},
	}
}

// InvalidMarker creates a new AppError for a marker that does not fit parameter param of function.
func InvalidMarker(function string, param int, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidMarker,
		Message: fmt.Sprintf("invalid injection marker for parameter %d of '%s': %s", param, function, reason),
		Details: map[string]any{"function": function, "param": param},
	}
}

// UnregisteredType creates a new AppError for a type with no registered factory.
func UnregisteredType(typ string) *AppError {
	return &AppError{
		Code:    ErrCodeUnregisteredType,
		Message: fmt.Sprintf("no factory registered for type %s", typ),
		Details: map[string]any{"type": typ},
	}
}

// CyclicDependency creates a new AppError for a dependency chain that loops back on itself.
func CyclicDependency(chain []string) *AppError {
	return &AppError{
		Code:    ErrCodeCyclicDependency,
		Message: fmt.Sprintf("cyclic dependency: %s", strings.Join(chain, " -> ")),
		Details: map[string]any{"chain": chain},
	}
}

// FactoryFailed creates a new AppError for a factory that returned an error.
func FactoryFailed(typ string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeFactoryFailed,
		Message:   fmt.Sprintf("factory for type %s failed", typ),
		Retryable: true,
		Details:   map[string]any{"type": typ},
		Cause:     cause,
	}
}

// TypeMismatch creates a new AppError for a value of an unexpected type.
func TypeMismatch(expected, actual string) *AppError {
	return &AppError{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("expected %s, got %s", expected, actual),
		Details: map[string]any{"expected": expected, "actual": actual},
	}
}

// InvalidArgument creates a new AppError for an explicit argument that cannot be used.
func InvalidArgument(function string, param int, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("invalid argument %d for '%s': %s", param, function, reason),
		Details: map[string]any{"function": function, "param": param},
	}
}

// MissingArgument creates a new AppError for a parameter left without a value.
func MissingArgument(function string, param int) *AppError {
	return &AppError{
		Code:    ErrCodeMissingArgument,
		Message: fmt.Sprintf("parameter %d of '%s' has no argument and no injection marker", param, function),
		Details: map[string]any{"function": function, "param": param},
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
