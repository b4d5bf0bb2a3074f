package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// HTTPError represents an HTTP error response.
type HTTPError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	TraceID string            `json:"trace_id,omitempty"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for an error.
// It maps error codes to appropriate HTTP status codes.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	// Check if it's our custom error type
	var customErr Error
	if errors.As(err, &customErr) {
		return codeToHTTPStatus(customErr.Code())
	}

	// Check for specific error types
	var (
		validationErr  *ValidationError
		notPinnedErr   *NotPinnedError
		directoryErr   *DirectoryUnavailableError
		retrievalErr   *RetrievalFailedError
		unreachableErr *UnreachableError
		timeoutErr     *TimeoutError
		serviceErr     *ServiceError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notPinnedErr):
		return http.StatusNotFound
	case errors.As(err, &directoryErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &retrievalErr):
		return http.StatusBadGateway
	case errors.As(err, &unreachableErr):
		return http.StatusBadGateway
	case errors.As(err, &timeoutErr):
		return http.StatusRequestTimeout
	case errors.As(err, &serviceErr):
		return http.StatusServiceUnavailable
	}

	// Check sentinel errors
	switch {
	case errors.Is(err, ErrNotPinned):
		return http.StatusNotFound
	case errors.Is(err, ErrDirectoryUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrRetrievalFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrUnreachable):
		return http.StatusBadGateway
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusRequestTimeout
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError
	}

	// Default to internal server error
	return http.StatusInternalServerError
}

// codeToHTTPStatus maps error codes to HTTP status codes.
func codeToHTTPStatus(code string) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeCancelled:
		return 499 // Client Closed Request
	case CodeUnknown, CodeInternal:
		return http.StatusInternalServerError
	case CodeInvalidArgument, CodeValidation, CodeFailedPrecondition:
		return http.StatusBadRequest
	case CodeDeadlineExceeded, CodeTimeout:
		return http.StatusRequestTimeout
	case CodeNotFound, CodeNotPinned:
		return http.StatusNotFound
	case CodeAborted:
		return http.StatusConflict
	case CodeUnimplemented:
		return http.StatusNotImplemented
	case CodeUnavailable, CodeServiceUnavailable, CodeDirectoryUnavailable:
		return http.StatusServiceUnavailable
	case CodeRetrievalFailed, CodeUnreachable:
		return http.StatusBadGateway
	case CodeConfigError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTPError converts an error to an HTTPError.
func ToHTTPError(err error, traceID string) *HTTPError {
	if err == nil {
		return &HTTPError{
			Status:  http.StatusOK,
			Code:    CodeOK,
			Message: "success",
			TraceID: traceID,
		}
	}

	httpErr := &HTTPError{
		Status:  StatusCode(err),
		TraceID: traceID,
		Details: make(map[string]string),
	}

	// Extract details from custom error types
	var customErr Error
	if errors.As(err, &customErr) {
		httpErr.Code = customErr.Code()
		httpErr.Message = customErr.Message()
	} else {
		httpErr.Code = CodeInternal
		httpErr.Message = err.Error()
	}

	// Add type-specific details
	var (
		validationErr  *ValidationError
		notPinnedErr   *NotPinnedError
		directoryErr   *DirectoryUnavailableError
		retrievalErr   *RetrievalFailedError
		unreachableErr *UnreachableError
		timeoutErr     *TimeoutError
		serviceErr     *ServiceError
		internalErr    *InternalError
	)

	switch {
	case errors.As(err, &validationErr):
		if validationErr.Field != "" {
			httpErr.Details["field"] = validationErr.Field
		}
	case errors.As(err, &notPinnedErr):
		if notPinnedErr.Identifier != "" {
			httpErr.Details["identifier"] = notPinnedErr.Identifier
		}
	case errors.As(err, &retrievalErr):
		if retrievalErr.Identifier != "" {
			httpErr.Details["identifier"] = retrievalErr.Identifier
		}
		if retrievalErr.Detail != "" {
			httpErr.Details["gateway_error"] = retrievalErr.Detail
		}
		if retrievalErr.StatusCode > 0 {
			httpErr.Details["gateway_status"] = strconv.Itoa(retrievalErr.StatusCode)
		}
	case errors.As(err, &directoryErr):
		if directoryErr.Endpoint != "" {
			httpErr.Details["endpoint"] = directoryErr.Endpoint
		}
	case errors.As(err, &unreachableErr):
		if unreachableErr.Endpoint != "" {
			httpErr.Details["endpoint"] = unreachableErr.Endpoint
		}
	case errors.As(err, &timeoutErr):
		if timeoutErr.Operation != "" {
			httpErr.Details["operation"] = timeoutErr.Operation
		}
		if timeoutErr.Duration != "" {
			httpErr.Details["duration"] = timeoutErr.Duration
		}
	case errors.As(err, &serviceErr):
		if serviceErr.Service != "" {
			httpErr.Details["service"] = serviceErr.Service
		}
	case errors.As(err, &internalErr):
		if internalErr.Operation != "" {
			httpErr.Details["operation"] = internalErr.Operation
		}
	}

	return httpErr
}

// WriteHTTPError writes an error response to an http.ResponseWriter.
func WriteHTTPError(w http.ResponseWriter, err error, traceID string) {
	httpErr := ToHTTPError(err, traceID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Status)
	json.NewEncoder(w).Encode(httpErr)
}
