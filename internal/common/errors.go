// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// External call errors.
	ErrRateLimit  = errors.New("rate limit exceeded")
	ErrMaxRetries = errors.New("max retries exceeded")

	// ErrMalformedResponse indicates the model returned output that could
	// not be parsed into the expected structure.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrDimensionMismatch indicates two vectors of different lengths were
	// compared. This is a fatal input error for the request.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// Catalog errors.
	ErrCatalogEmpty  = errors.New("catalog contains no usable rows")
	ErrItemNotFound  = errors.New("catalog item not found")
	ErrMissingConfig = errors.New("missing configuration")
)

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// UserError represents an error whose message is safe to show to API callers.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
