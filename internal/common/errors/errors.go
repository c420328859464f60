// Package errors provides standardized error handling for the concierge
// pipeline. Validation errors are recovered locally (re-elicitation or a
// dropped message); upstream errors abort the current iteration and rely on
// queue redelivery.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Validation errors: recovered locally, never retried.
	ErrCodeInvalidRequestPayload ErrorCode = "INVALID_REQUEST_PAYLOAD"
	ErrCodeUnsupportedLocation   ErrorCode = "UNSUPPORTED_LOCATION"
	ErrCodeInvalidDate           ErrorCode = "INVALID_DATE"

	// Upstream/system errors: abort the iteration, queue redelivers.
	ErrCodeQueueReceiveFailed ErrorCode = "QUEUE_RECEIVE_FAILED"
	ErrCodeQueueEnqueueFailed ErrorCode = "QUEUE_ENQUEUE_FAILED"
	ErrCodeQueueAckFailed     ErrorCode = "QUEUE_ACK_FAILED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeStoreLookupFailed ErrorCode = "STORE_LOOKUP_FAILED"
	ErrCodeStoreScanFailed   ErrorCode = "STORE_SCAN_FAILED"
	ErrCodeStoreWriteFailed  ErrorCode = "STORE_WRITE_FAILED"

	ErrCodeEmailSendFailed ErrorCode = "EMAIL_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidRequestPayloadError creates a non-retryable payload validation error.
func NewInvalidRequestPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequestPayload,
		Message:   "Queue message is not a valid recommendation request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnsupportedLocationError creates a non-retryable location validation error.
func NewUnsupportedLocationError(location string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedLocation,
		Message:   "Requested location is not served",
		Details:   fmt.Sprintf("location: %s", location),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidDateError creates a non-retryable date validation error.
func NewInvalidDateError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDate,
		Message:   "Date slot is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueueReceiveFailedError creates a retryable queue receive error.
func NewQueueReceiveFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueueReceiveFailed,
		Message:   "Work queue receive failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueueEnqueueFailedError creates a retryable enqueue error.
func NewQueueEnqueueFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueueEnqueueFailed,
		Message:   "Work queue enqueue failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueueAckFailedError creates a retryable acknowledge error.
func NewQueueAckFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueueAckFailed,
		Message:   "Work queue acknowledge failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search index query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Search index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreLookupFailedError creates a retryable catalog lookup error.
func NewStoreLookupFailedError(businessID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreLookupFailed,
		Message:   "Catalog store lookup error",
		Details:   fmt.Sprintf("businessId: %s, error: %s", businessID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreScanFailedError creates a retryable catalog scan error.
func NewStoreScanFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreScanFailed,
		Message:   "Catalog store scan error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreWriteFailedError creates a retryable catalog write error.
func NewStoreWriteFailedError(businessID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreWriteFailed,
		Message:   "Catalog store write error",
		Details:   fmt.Sprintf("businessId: %s, error: %s", businessID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailSendFailedError creates a retryable email delivery error.
func NewEmailSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailSendFailed,
		Message:   "Recommendation email delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeQueueReceiveFailed,
		ErrCodeQueueEnqueueFailed,
		ErrCodeQueueAckFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeStoreLookupFailed,
		ErrCodeStoreScanFailed,
		ErrCodeStoreWriteFailed,
		ErrCodeEmailSendFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "QUEUE"):
		return "QUEUE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "STORE"):
		return "STORE"
	case strings.Contains(codeStr, "EMAIL"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNSUPPORTED"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
