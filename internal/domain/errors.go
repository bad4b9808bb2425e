// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation      ErrorType = iota // Input validation errors (400 Bad Request)
	ErrorTypeNotFound                         // Resource not found errors (404 Not Found)
	ErrorTypeConflict                         // Resource conflict errors (409 Conflict)
	ErrorTypePolicyRejection                  // Booking policy rejections, user-facing and non-retryable (422 Unprocessable Entity)
	ErrorTypeUpstreamFetch                    // Calendar provider fetch failures, recoverable per calendar (502 Bad Gateway)
	ErrorTypeCommit                           // Booking commit failures, rolled back with no partial state (500 Internal Server Error)
	ErrorTypeInternal                         // Internal server errors (500 Internal Server Error)
	ErrorTypeUnavailable                      // Service unavailable errors (503 Service Unavailable)
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

// NewPolicyRejectionError reports a booking attempt rejected by group policy.
// The message is shown to the end user as the rejection reason.
func NewPolicyRejectionError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypePolicyRejection, Message: message, Err: errors.Join(err...)}
}

// NewUpstreamFetchError reports a calendar provider failure. The caller decides
// whether it degrades (one of several calendars) or fails the participant closed.
func NewUpstreamFetchError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUpstreamFetch, Message: message, Err: errors.Join(err...)}
}

// NewCommitError reports a failed booking commit. No partial booking state
// remains when this is returned.
func NewCommitError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeCommit, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}
