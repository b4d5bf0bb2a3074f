package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Common sentinel errors for quick checks
var (
	// ErrNotPinned is returned when an identifier is not present in the pin set.
	ErrNotPinned = errors.New("not pinned")

	// ErrDirectoryUnavailable is returned when the pin directory cannot be
	// consulted at all.
	ErrDirectoryUnavailable = errors.New("pin directory unavailable")

	// ErrRetrievalFailed is returned when the gateway declined to serve a
	// pinned object.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrUnreachable is returned when an endpoint cannot be reached at the
	// transport level.
	ErrUnreachable = errors.New("endpoint unreachable")

	// ErrInvalidInput is returned when request input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("operation timeout")

	// ErrServiceUnavailable is returned when a required service is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInternal is returned when an internal error occurs.
	ErrInternal = errors.New("internal error")
)

// Error is the base interface for all custom errors in the system.
// It extends the standard error interface with additional context.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
	stack   []uintptr
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// Stack returns the captured stack trace.
func (e *BaseError) Stack() []uintptr {
	return e.stack
}

// captureStack captures the current stack trace.
func captureStack(skip int) []uintptr {
	const maxDepth = 32
	stack := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, stack)
	return stack[:n]
}

// StackTrace returns a formatted stack trace string.
func (e *BaseError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}

	var buf strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&buf, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return buf.String()
}

// ValidationError represents an input validation error.
type ValidationError struct {
	*BaseError
	Field string
	Value interface{}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{
			code:    CodeValidation,
			message: message,
			stack:   captureStack(1),
		},
		Field: field,
		Value: value,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.message)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

// NotPinnedError is returned when the requested identifier is absent from the
// current pin set. The gateway is never contacted for such identifiers.
type NotPinnedError struct {
	*BaseError
	Identifier string
}

// NewNotPinnedError creates a new not-pinned error.
func NewNotPinnedError(identifier string) *NotPinnedError {
	return &NotPinnedError{
		BaseError: &BaseError{
			code:    CodeNotPinned,
			message: fmt.Sprintf("'%s' is not pinned on the cluster", identifier),
			stack:   captureStack(1),
		},
		Identifier: identifier,
	}
}

// Error implements the error interface.
func (e *NotPinnedError) Error() string {
	return fmt.Sprintf("'%s' is not pinned on the cluster", e.Identifier)
}

// DirectoryUnavailableError is returned when the pin directory could not be
// consulted, either because it was unreachable or because it answered with a
// failure. Membership of any identifier is unknown in that state.
type DirectoryUnavailableError struct {
	*BaseError
	Endpoint string
}

// NewDirectoryUnavailableError creates a new directory-unavailable error.
func NewDirectoryUnavailableError(endpoint string, cause error) *DirectoryUnavailableError {
	return &DirectoryUnavailableError{
		BaseError: &BaseError{
			code:    CodeDirectoryUnavailable,
			message: "could not fetch pin list from cluster",
			cause:   cause,
			stack:   captureStack(1),
		},
		Endpoint: endpoint,
	}
}

// RetrievalFailedError is returned when the gateway was reachable but the
// object could not be fetched. Detail carries the gateway's error body text.
type RetrievalFailedError struct {
	*BaseError
	Identifier string
	StatusCode int
	Detail     string
}

// NewRetrievalFailedError creates a new retrieval-failed error.
func NewRetrievalFailedError(identifier, detail string, statusCode int, cause error) *RetrievalFailedError {
	return &RetrievalFailedError{
		BaseError: &BaseError{
			code:    CodeRetrievalFailed,
			message: fmt.Sprintf("failed to retrieve '%s' from gateway", identifier),
			cause:   cause,
			stack:   captureStack(1),
		},
		Identifier: identifier,
		StatusCode: statusCode,
		Detail:     detail,
	}
}

// Error implements the error interface.
func (e *RetrievalFailedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("failed to retrieve '%s' from gateway: %s", e.Identifier, e.Detail)
	}
	return e.BaseError.Error()
}

// UnreachableError wraps a transport-level failure so that callers can
// distinguish connectivity problems from declared HTTP error responses.
type UnreachableError struct {
	*BaseError
	Endpoint string
}

// NewUnreachableError creates a new unreachable error.
func NewUnreachableError(endpoint string, cause error) *UnreachableError {
	return &UnreachableError{
		BaseError: &BaseError{
			code:    CodeUnreachable,
			message: fmt.Sprintf("endpoint %s unreachable", endpoint),
			cause:   cause,
			stack:   captureStack(1),
		},
		Endpoint: endpoint,
	}
}

// Is reports whether target is the unreachable sentinel, so that
// errors.Is(err, ErrUnreachable) matches through wrapping.
func (e *UnreachableError) Is(target error) bool {
	return target == ErrUnreachable
}

// InternalError represents an internal server error.
type InternalError struct {
	*BaseError
	Operation string
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *InternalError {
	if message == "" {
		message = "internal error"
	}
	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
	}
}

// WithOperation sets the operation context.
func (e *InternalError) WithOperation(op string) *InternalError {
	e.Operation = op
	return e
}

// ServiceError represents a downstream service error.
type ServiceError struct {
	*BaseError
	Service    string
	StatusCode int
}

// NewServiceError creates a new service error.
func NewServiceError(service, message string, statusCode int, cause error) *ServiceError {
	if message == "" {
		message = fmt.Sprintf("%s service error", service)
	}
	return &ServiceError{
		BaseError: &BaseError{
			code:    CodeServiceUnavailable,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		Service:    service,
		StatusCode: statusCode,
	}
}

// TimeoutError represents a timeout error.
type TimeoutError struct {
	*BaseError
	Operation string
	Duration  string
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(operation, duration string) *TimeoutError {
	message := "operation timeout"
	if operation != "" {
		message = fmt.Sprintf("%s timeout", operation)
	}
	return &TimeoutError{
		BaseError: &BaseError{
			code:    CodeTimeout,
			message: message,
			stack:   captureStack(1),
		},
		Operation: operation,
		Duration:  duration,
	}
}

// Wrap wraps an error with additional context.
// If the error is already one of our custom types, it preserves the type
// and adds the cause chain. Otherwise, it creates an InternalError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already our error type, wrap it
	if e, ok := err.(Error); ok {
		return &BaseError{
			code:    e.Code(),
			message: message,
			cause:   err,
			stack:   captureStack(1),
		}
	}

	// Otherwise create an internal error
	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   err,
			stack:   captureStack(1),
		},
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// New creates a new error with a message.
func New(message string) error {
	return &BaseError{
		code:    CodeInternal,
		message: message,
		stack:   captureStack(1),
	}
}

// Newf creates a new error with a formatted message.
func Newf(format string, args ...interface{}) error {
	return New(fmt.Sprintf(format, args...))
}
