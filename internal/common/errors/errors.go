// Package errors provides standardized error handling for the dashboard API.
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

const (
	// Record store (Airtable)
	ErrCodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	ErrCodeSourceTimeout     ErrorCode = "SOURCE_TIMEOUT"
	ErrCodeSourceRateLimited ErrorCode = "SOURCE_RATE_LIMITED"
	ErrCodeSourceAuthFailed  ErrorCode = "SOURCE_AUTH_FAILED"
	ErrCodeSourceNotFound    ErrorCode = "SOURCE_NOT_FOUND"

	// Task workspace (Notion)
	ErrCodeWorkspaceUnavailable ErrorCode = "WORKSPACE_UNAVAILABLE"
	ErrCodeTaskNotFound         ErrorCode = "TASK_NOT_FOUND"
	ErrCodeTaskValidationFailed ErrorCode = "TASK_VALIDATION_FAILED"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewSourceUnavailableError creates a retryable record store error.
func NewSourceUnavailableError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceUnavailable,
		Message:   "Record store request failed",
		Details:   fmt.Sprintf("table: %s, error: %v", table, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSourceTimeoutError creates a retryable record store timeout error.
func NewSourceTimeoutError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceTimeout,
		Message:   "Record store request timed out",
		Details:   fmt.Sprintf("table: %s", table),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSourceRateLimitedError creates a retryable throttling error.
func NewSourceRateLimitedError(table string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceRateLimited,
		Message:   "Record store rate limit exceeded",
		Details:   fmt.Sprintf("table: %s", table),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceAuthFailedError creates a non-retryable credential error.
func NewSourceAuthFailedError(service, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceAuthFailed,
		Message:   "Upstream rejected credentials",
		Details:   fmt.Sprintf("service: %s, %s", service, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceNotFoundError creates a non-retryable unknown base/table error.
func NewSourceNotFoundError(table, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceNotFound,
		Message:   "Record store table not found",
		Details:   fmt.Sprintf("table: %s, %s", table, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkspaceUnavailableError creates a retryable task workspace error.
func NewWorkspaceUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkspaceUnavailable,
		Message:   "Task workspace request failed",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTaskNotFoundError creates a non-retryable missing task error.
func NewTaskNotFoundError(taskID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaskNotFound,
		Message:   "Task not found",
		Details:   fmt.Sprintf("taskId: %s", taskID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskValidationFailedError creates a non-retryable payload error.
func NewTaskValidationFailedError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaskValidationFailed,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError wraps a cache backend failure.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache backend unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidRequestError creates a non-retryable malformed request error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Normalization
// ==========================

// Normalize returns err as a StandardError. Context deadlines map to
// SOURCE_TIMEOUT; anything else unknown becomes INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewSourceTimeoutError("", err)
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// HTTPStatus maps an error code to the response status of the dashboard API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeTaskValidationFailed, ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeTaskNotFound:
		return http.StatusNotFound
	case ErrCodeSourceTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeSourceUnavailable,
		ErrCodeSourceRateLimited,
		ErrCodeSourceAuthFailed,
		ErrCodeSourceNotFound,
		ErrCodeWorkspaceUnavailable:
		return http.StatusBadGateway
	case ErrCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// GetRetryCount returns the number of upstream retries worth attempting.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSourceUnavailable, ErrCodeWorkspaceUnavailable:
		return 3
	case ErrCodeSourceRateLimited, ErrCodeSourceTimeout:
		return 2
	default:
		return 0
	}
}

// IsRetryable reports whether err is a StandardError marked retryable.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Retryable
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "SOURCE"):
		return "RECORD_STORE"
	case strings.HasPrefix(codeStr, "WORKSPACE") || strings.HasPrefix(codeStr, "TASK_NOT"):
		return "WORKSPACE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
