package errors

import "errors"

// IsNotPinned checks if an error indicates the identifier is absent from the
// pin set.
func IsNotPinned(err error) bool {
	if err == nil {
		return false
	}

	var notPinnedErr *NotPinnedError
	return errors.As(err, &notPinnedErr) || errors.Is(err, ErrNotPinned)
}

// IsDirectoryUnavailable checks if an error indicates the pin directory could
// not be consulted.
func IsDirectoryUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var directoryErr *DirectoryUnavailableError
	return errors.As(err, &directoryErr) || errors.Is(err, ErrDirectoryUnavailable)
}

// IsRetrievalFailed checks if an error indicates the gateway declined to serve
// a pinned object.
func IsRetrievalFailed(err error) bool {
	if err == nil {
		return false
	}

	var retrievalErr *RetrievalFailedError
	return errors.As(err, &retrievalErr) || errors.Is(err, ErrRetrievalFailed)
}

// IsUnreachable checks if an error carries a transport-level connectivity
// failure anywhere in its chain.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}

	var unreachableErr *UnreachableError
	return errors.As(err, &unreachableErr) || errors.Is(err, ErrUnreachable)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr) || errors.Is(err, ErrInvalidInput)
}

// IsTimeout checks if an error indicates a timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr) || errors.Is(err, ErrTimeout)
}

// IsServiceUnavailable checks if an error indicates a service is unavailable.
func IsServiceUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var serviceErr *ServiceError
	return errors.As(err, &serviceErr) || errors.Is(err, ErrServiceUnavailable)
}

// IsInternal checks if an error is an internal error.
func IsInternal(err error) bool {
	if err == nil {
		return false
	}

	var internalErr *InternalError
	return errors.As(err, &internalErr) || errors.Is(err, ErrInternal)
}

// ShouldRetry checks if an operation should be retried based on the error.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	// Check if it's a retryable error type
	if IsTimeout(err) || IsServiceUnavailable(err) {
		return true
	}

	// Check the error code
	var customErr Error
	if errors.As(err, &customErr) {
		return IsRetryable(customErr.Code())
	}

	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	if err == nil {
		return CodeOK
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Code()
	}

	// Try to infer from sentinel errors
	switch {
	case IsNotPinned(err):
		return CodeNotPinned
	case IsDirectoryUnavailable(err):
		return CodeDirectoryUnavailable
	case IsRetrievalFailed(err):
		return CodeRetrievalFailed
	case IsUnreachable(err):
		return CodeUnreachable
	case IsValidation(err):
		return CodeValidation
	case IsTimeout(err):
		return CodeTimeout
	case IsServiceUnavailable(err):
		return CodeServiceUnavailable
	default:
		return CodeInternal
	}
}

// GetErrorMessage extracts a human-readable message from an error.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Message()
	}

	return err.Error()
}

// Cause returns the underlying cause of an error.
// It unwraps the error chain until it finds the root cause.
func Cause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		underlying := unwrapper.Unwrap()
		if underlying == nil {
			return err
		}
		err = underlying
	}
}
