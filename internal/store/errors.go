package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrHabitNotFound, ErrCompletionNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., the same habit completed twice on one day).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrHabitNotFound indicates that the requested habit does not exist for the user.
	ErrHabitNotFound = fmt.Errorf("%w: habit", ErrNotFound)

	// ErrCompletionNotFound indicates that the (habit, day) pair is not in the ledger.
	ErrCompletionNotFound = fmt.Errorf("%w: completion", ErrNotFound)

	// ErrUserStatsNotFound indicates that no stats row exists for the user yet.
	ErrUserStatsNotFound = fmt.Errorf("%w: user stats", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrCompletionExists indicates that the habit is already completed on that day.
	ErrCompletionExists = fmt.Errorf("%w: completion", ErrDuplicate)

	// ErrItemAlreadyOwned indicates that the user already purchased the item.
	ErrItemAlreadyOwned = fmt.Errorf("%w: purchased item", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
// This includes the generic ErrDuplicate and all entity-specific duplicate errors.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
// It represents a persistence failure: the store could not be read or written.
// Callers must surface it rather than continue with possibly stale derived state.
type StoreError struct {
	Entity    string // The entity type (e.g., "habit", "completion")
	Operation string // The operation that failed (e.g., "create", "delete")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// IsPersistenceError reports whether err is a store read/write failure.
func IsPersistenceError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) || errors.Is(err, ErrTransactionFailed)
}
