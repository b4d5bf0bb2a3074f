package errors

// Error codes for categorizing errors.
// These codes map to HTTP status codes where applicable.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeCancelled indicates the operation was cancelled.
	CodeCancelled = "CANCELLED"

	// CodeUnknown indicates an unknown error occurred.
	CodeUnknown = "UNKNOWN"

	// CodeInvalidArgument indicates client specified an invalid argument.
	CodeInvalidArgument = "INVALID_ARGUMENT"

	// CodeDeadlineExceeded indicates operation deadline was exceeded.
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeFailedPrecondition indicates operation was rejected because the system
	// is not in a required state.
	CodeFailedPrecondition = "FAILED_PRECONDITION"

	// CodeAborted indicates the operation was aborted.
	CodeAborted = "ABORTED"

	// CodeUnimplemented indicates operation is not implemented or not supported.
	CodeUnimplemented = "UNIMPLEMENTED"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"

	// CodeUnavailable indicates the service is currently unavailable.
	CodeUnavailable = "UNAVAILABLE"

	// Domain-specific error codes

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodeNotPinned indicates the identifier is absent from the pin set.
	CodeNotPinned = "NOT_PINNED"

	// CodeDirectoryUnavailable indicates the pin directory could not be consulted.
	CodeDirectoryUnavailable = "DIRECTORY_UNAVAILABLE"

	// CodeRetrievalFailed indicates the gateway declined to serve an object.
	CodeRetrievalFailed = "RETRIEVAL_FAILED"

	// CodeUnreachable indicates a transport-level connectivity failure.
	CodeUnreachable = "UNREACHABLE"

	// CodeTimeout indicates an operation timed out.
	CodeTimeout = "TIMEOUT"

	// CodeServiceUnavailable indicates a downstream service is unavailable.
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// CodeConfigError indicates a configuration error.
	CodeConfigError = "CONFIG_ERROR"
)

// ErrorCategory represents a high-level error category.
type ErrorCategory string

const (
	// CategoryClient indicates a client-side error (4xx).
	CategoryClient ErrorCategory = "CLIENT_ERROR"

	// CategoryServer indicates a server-side error (5xx).
	CategoryServer ErrorCategory = "SERVER_ERROR"

	// CategoryNetwork indicates a network-related error.
	CategoryNetwork ErrorCategory = "NETWORK_ERROR"

	// CategoryTimeout indicates a timeout error.
	CategoryTimeout ErrorCategory = "TIMEOUT_ERROR"

	// CategoryValidation indicates a validation error.
	CategoryValidation ErrorCategory = "VALIDATION_ERROR"
)

// GetCategory returns the category for an error code.
func GetCategory(code string) ErrorCategory {
	switch code {
	case CodeInvalidArgument, CodeValidation:
		return CategoryValidation

	case CodeNotFound, CodeNotPinned, CodeFailedPrecondition:
		return CategoryClient

	case CodeTimeout, CodeDeadlineExceeded:
		return CategoryTimeout

	case CodeUnreachable, CodeDirectoryUnavailable, CodeRetrievalFailed,
		CodeServiceUnavailable, CodeUnavailable:
		return CategoryNetwork

	default:
		return CategoryServer
	}
}

// IsRetryable returns true if an error with the given code should be retried.
// Membership misses and validation failures are terminal; connectivity and
// upstream failures may resolve on a later attempt.
func IsRetryable(code string) bool {
	switch code {
	case CodeTimeout, CodeDeadlineExceeded,
		CodeServiceUnavailable, CodeUnavailable,
		CodeDirectoryUnavailable, CodeRetrievalFailed,
		CodeUnreachable, CodeAborted:
		return true
	default:
		return false
	}
}

// IsClientError returns true if the error is a client error (4xx).
func IsClientError(code string) bool {
	cat := GetCategory(code)
	return cat == CategoryClient || cat == CategoryValidation
}

// IsServerError returns true if the error is a server error (5xx).
func IsServerError(code string) bool {
	return GetCategory(code) == CategoryServer
}
