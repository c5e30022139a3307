// internal/common/errors/errors.go

// Package errors provides standardized error handling for the loan
// application flow.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"
	ErrCodeApplicationNotFound ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeGuardNotSatisfied   ErrorCode = "GUARD_NOT_SATISFIED"
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeChecklistIncomplete ErrorCode = "CHECKLIST_INCOMPLETE"

	ErrCodeStorageReadFailed  ErrorCode = "STORAGE_READ_FAILED"
	ErrCodeStorageWriteFailed ErrorCode = "STORAGE_WRITE_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeSearchIndexFailed      ErrorCode = "SEARCH_INDEX_FAILED"
)

// FlowError is a structured application error. Retryable distinguishes
// transient infrastructure failures from guard/business failures that retry
// can never fix.
type FlowError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("FlowError[%s]: %s", e.Code, e.Message)
}

// NewUserNotFoundError creates a non-retryable lookup error for login misses.
func NewUserNotFoundError(email string) *FlowError {
	return &FlowError{
		Code:      ErrCodeUserNotFound,
		Message:   "User not found. Please sign up first.",
		Details:   fmt.Sprintf("email: %s", email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationNotFoundError creates a non-retryable lookup error.
func NewApplicationNotFoundError(applicationID string) *FlowError {
	return &FlowError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGuardNotSatisfiedError creates a non-retryable transition-blocked error.
func NewGuardNotSatisfiedError(message, details string) *FlowError {
	return &FlowError{
		Code:      ErrCodeGuardNotSatisfied,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable step payload error.
func NewValidationFailedError(step string, details string) *FlowError {
	return &FlowError{
		Code:      ErrCodeValidationFailed,
		Message:   "Step data validation failed",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"step": step},
		Timestamp: time.Now().UTC(),
	}
}

// NewChecklistIncompleteError creates a non-retryable document guard error.
func NewChecklistIncompleteError(missing []string) *FlowError {
	return &FlowError{
		Code:      ErrCodeChecklistIncomplete,
		Message:   "Required documents are missing",
		Details:   fmt.Sprintf("missing: %v", missing),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageReadFailedError creates a retryable storage error.
func NewStorageReadFailedError(err error) *FlowError {
	return &FlowError{
		Code:      ErrCodeStorageReadFailed,
		Message:   "Storage read failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageWriteFailedError creates a retryable storage error.
func NewStorageWriteFailedError(err error) *FlowError {
	return &FlowError{
		Code:      ErrCodeStorageWriteFailed,
		Message:   "Storage write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(notificationType string, err error) *FlowError {
	return &FlowError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchIndexFailedError creates a retryable indexing error.
func NewSearchIndexFailedError(err error) *FlowError {
	return &FlowError{
		Code:      ErrCodeSearchIndexFailed,
		Message:   "Application indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err is a FlowError marked retryable.
func IsRetryable(err error) bool {
	if fe, ok := err.(*FlowError); ok {
		return fe.Retryable
	}
	return false
}
