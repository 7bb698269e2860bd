// Package errors provides the standardized error taxonomy for lead intake.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Client-correctable errors
const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeParseError       ErrorCode = "PARSE_ERROR"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
)

// Server-side errors
const (
	ErrCodePrimaryStoreFailed       ErrorCode = "PRIMARY_STORE_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeConfigurationError       ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// Secondary sink errors. These never escalate to a non-2xx response.
const (
	ErrCodeSinkFailed        ErrorCode = "SINK_FAILED"
	ErrCodeSinkTimeout       ErrorCode = "SINK_TIMEOUT"
	ErrCodeSinkPanic         ErrorCode = "SINK_PANIC"
	ErrCodeSinkNotConfigured ErrorCode = "SINK_NOT_CONFIGURED"
	ErrCodeExternalService   ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout           ErrorCode = "TIMEOUT"
	ErrCodeResourceNotFound  ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication    ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeDuplicateContact  ErrorCode = "DUPLICATE_CONTACT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	se := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		se.Details = cause.Error()
	}
	return se
}

// ==========================
// 2. Error Constructors
// ==========================

// NewParseError reports a malformed request body.
func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Invalid request body", err, false)
}

// NewRateLimitedError reports a rejected submission.
func NewRateLimitedError(key string) *StandardError {
	se := newError(ErrCodeRateLimited, "Too many requests", nil, true)
	se.Details = fmt.Sprintf("key: %s", key)
	return se
}

// NewPrimaryStoreError wraps a failed primary write. It is the only error that aborts a submission.
func NewPrimaryStoreError(err error) *StandardError {
	return newError(ErrCodePrimaryStoreFailed, "Failed to save lead", err, true)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err, true)
}

// NewConfigurationError reports missing or invalid configuration.
func NewConfigurationError(details string) *StandardError {
	se := newError(ErrCodeConfigurationError, "Invalid configuration", nil, false)
	se.Details = details
	return se
}

// NewSinkNotConfiguredError is returned when a sink is invoked without credentials.
func NewSinkNotConfiguredError(sink string) *StandardError {
	se := newError(ErrCodeSinkNotConfigured, "Sink not configured", nil, false)
	se.Details = fmt.Sprintf("sink: %s", sink)
	se.Metadata = map[string]interface{}{"sink": sink}
	return se
}

// NewSinkTimeoutError records a sink that did not settle before its deadline.
func NewSinkTimeoutError(sink string, timeout time.Duration) *StandardError {
	se := newError(ErrCodeSinkTimeout, "Sink timed out", context.DeadlineExceeded, true)
	se.Details = fmt.Sprintf("sink: %s, timeout: %s", sink, timeout)
	se.Metadata = map[string]interface{}{"sink": sink}
	return se
}

// NewSinkPanicError records a sink that panicked.
func NewSinkPanicError(sink string, recovered interface{}) *StandardError {
	se := newError(ErrCodeSinkPanic, "Sink panicked", nil, false)
	se.Details = fmt.Sprintf("sink: %s, panic: %v", sink, recovered)
	se.Metadata = map[string]interface{}{"sink": sink}
	return se
}

// NewSinkFailedError wraps any other sink error.
func NewSinkFailedError(sink string, err error) *StandardError {
	se := newError(ErrCodeSinkFailed, "Sink failed", err, true)
	se.Metadata = map[string]interface{}{"sink": sink}
	return se
}

// NewExternalServiceError creates a retryable external service error.
func NewExternalServiceError(service string, err error) *StandardError {
	se := newError(ErrCodeExternalService, fmt.Sprintf("External service %s failed", service), err, true)
	se.Metadata = map[string]interface{}{"service": service}
	return se
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(service string, err error) *StandardError {
	se := newError(ErrCodeTimeout, fmt.Sprintf("Request to %s timed out", service), err, true)
	se.Metadata = map[string]interface{}{"service": service}
	return se
}

// NewResourceNotFoundError creates a non-retryable not-found error.
func NewResourceNotFoundError(service, details string) *StandardError {
	se := newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), nil, false)
	se.Details = details
	return se
}

// NewAuthenticationError reports rejected credentials at an upstream service.
func NewAuthenticationError(service string, err error) *StandardError {
	se := newError(ErrCodeAuthentication, fmt.Sprintf("Authentication with %s failed", service), err, false)
	se.Metadata = map[string]interface{}{"service": service}
	return se
}

// ==========================
// 3. Classification
// ==========================

var httpStatusMapping = map[ErrorCode]int{
	ErrCodeValidationFailed:         http.StatusBadRequest,
	ErrCodeParseError:               http.StatusBadRequest,
	ErrCodeRateLimited:              http.StatusTooManyRequests,
	ErrCodePrimaryStoreFailed:       http.StatusInternalServerError,
	ErrCodeDatabaseConnectionFailed: http.StatusServiceUnavailable,
	ErrCodeConfigurationError:       http.StatusInternalServerError,
}

// HTTPStatus maps an error code to the response status. Sink codes map to 500 but
// are never surfaced through this path.
func HTTPStatus(code ErrorCode) int {
	if status, ok := httpStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AsStandard returns the *StandardError in err's chain, if any.
func AsStandard(err error) (*StandardError, bool) {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ShortReason condenses a sink error into the client-facing reason. Full detail
// belongs in server logs only.
func ShortReason(err error) string {
	if err == nil {
		return ""
	}
	if se, ok := AsStandard(err); ok {
		switch se.Code {
		case ErrCodeSinkTimeout, ErrCodeTimeout:
			return "timeout"
		case ErrCodeSinkPanic, ErrCodeInternal:
			return "internal error"
		case ErrCodeSinkNotConfigured, ErrCodeConfigurationError:
			return "not configured"
		case ErrCodeAuthentication:
			return "authentication failed"
		}
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "upstream error"
}

// IsRetryableErrorCode reports whether a resubmission could plausibly succeed.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodePrimaryStoreFailed, ErrCodeDatabaseConnectionFailed, ErrCodeRateLimited,
		ErrCodeSinkFailed, ErrCodeSinkTimeout, ErrCodeExternalService, ErrCodeTimeout:
		return true
	}
	return false
}

// GetErrorCategory groups codes for metrics labels.
func GetErrorCategory(code ErrorCode) string {
	c := string(code)
	switch {
	case code == ErrCodeValidationFailed || code == ErrCodeParseError:
		return "client"
	case code == ErrCodeRateLimited:
		return "throttle"
	case strings.HasPrefix(c, "SINK_"):
		return "sink"
	case strings.Contains(c, "DATABASE") || strings.Contains(c, "PRIMARY_STORE"):
		return "database"
	case code == ErrCodeExternalService || code == ErrCodeTimeout || code == ErrCodeAuthentication:
		return "external"
	case code == ErrCodeConfigurationError:
		return "configuration"
	default:
		return "unknown"
	}
}
