package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInsufficientCoins is returned when a purchase costs more than the
	// user's current balance.
	ErrInsufficientCoins = fmt.Errorf("%w: insufficient coins", ErrValidation)
)

// ValidationError describes a single field that failed validation.
// It always wraps an underlying sentinel so callers can use errors.Is
// with ErrValidation (or a more specific error).
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Field, e.Message, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation for every ValidationError, even when it wraps a
// more specific sentinel such as ErrInvalidID.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
// If err is nil, ErrValidation is used.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// IsValidationError checks if the error is any kind of validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
