// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "message only",
			err:      &DomainError{Type: ErrorTypeValidation, Message: "invalid date"},
			expected: "invalid date",
		},
		{
			name:     "message with wrapped error",
			err:      &DomainError{Type: ErrorTypeInternal, Message: "store failed", Err: errors.New("connection refused")},
			expected: "store failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying")
	err := NewInternalError("wrapper", underlying)
	assert.ErrorIs(t, err, underlying)
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{
			name:     "validation error",
			err:      NewValidationError("bad input"),
			expected: ErrorTypeValidation,
		},
		{
			name:     "not found error",
			err:      NewNotFoundError("missing"),
			expected: ErrorTypeNotFound,
		},
		{
			name:     "conflict error",
			err:      NewConflictError("already exists"),
			expected: ErrorTypeConflict,
		},
		{
			name:     "policy rejection error",
			err:      NewPolicyRejectionError("slot no longer available"),
			expected: ErrorTypePolicyRejection,
		},
		{
			name:     "upstream fetch error",
			err:      NewUpstreamFetchError("calendar fetch failed"),
			expected: ErrorTypeUpstreamFetch,
		},
		{
			name:     "commit error",
			err:      NewCommitError("unable to create event"),
			expected: ErrorTypeCommit,
		},
		{
			name:     "unavailable error",
			err:      NewUnavailableError("service not ready"),
			expected: ErrorTypeUnavailable,
		},
		{
			name:     "wrapped domain error",
			err:      fmt.Errorf("outer: %w", NewPolicyRejectionError("rescheduling not allowed")),
			expected: ErrorTypePolicyRejection,
		},
		{
			name:     "plain error falls back to internal",
			err:      errors.New("some error"),
			expected: ErrorTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorType(tt.err))
		})
	}
}

func TestConstructors_JoinMultipleErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	err := NewUpstreamFetchError("fetch failed", err1, err2)
	assert.ErrorIs(t, err, err1)
	assert.ErrorIs(t, err, err2)
}
