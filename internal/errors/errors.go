package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidConfiguration indicates scoring weights or thresholds are unusable.
	// Always fatal for the operation that supplied the configuration.
	InvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
	// ProviderFailure indicates the semantic search provider returned an error
	ProviderFailure ErrorCode = "PROVIDER_FAILURE"
	// PersistenceFailure indicates timestamp storage could not be read or written.
	// Non-fatal: callers log it and continue with empty state.
	PersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"
	// ScoringError indicates a component produced a non-finite or out-of-range score
	ScoringError ErrorCode = "SCORING_ERROR"
)

// RetrievalError represents a retrieval failure with a stable code,
// the operation that failed, and an optional underlying cause.
type RetrievalError struct {
	Code    ErrorCode   `json:"code"`
	Op      string      `json:"operation"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a RetrievalError without an underlying cause
func New(code ErrorCode, op, message string) *RetrievalError {
	return &RetrievalError{Code: code, Op: op, Message: message}
}

// Wrap creates a RetrievalError wrapping an underlying cause
func Wrap(code ErrorCode, op, message string, cause error) *RetrievalError {
	return &RetrievalError{Code: code, Op: op, Message: message, cause: cause}
}

// Error implements the error interface
func (e *RetrievalError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Op, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Op, e.Message)
}

// Unwrap returns the underlying error
func (e *RetrievalError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *RetrievalError) WithDetails(details interface{}) *RetrievalError {
	e.Details = details
	return e
}

// IsCode reports whether err or any error in its chain carries the given code
func IsCode(err error, code ErrorCode) bool {
	var re *RetrievalError
	if stderrors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// CodeOf returns the error code carried by err, or empty string if err
// is not a RetrievalError
func CodeOf(err error) ErrorCode {
	var re *RetrievalError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return ""
}
