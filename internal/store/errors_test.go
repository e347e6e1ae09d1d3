package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("failed: %w", ErrNotFound), expected: true},
		{name: "ErrHabitNotFound", err: ErrHabitNotFound, expected: true},
		{name: "ErrCompletionNotFound", err: ErrCompletionNotFound, expected: true},
		{name: "ErrUserStatsNotFound", err: ErrUserStatsNotFound, expected: true},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{name: "ErrCompletionExists", err: ErrCompletionExists, expected: true},
		{name: "ErrItemAlreadyOwned", err: fmt.Errorf("purchase: %w", ErrItemAlreadyOwned), expected: true},
		{name: "ErrNotFound", err: ErrNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDuplicateError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Run("with wrapped error", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := NewStoreError("habit", "create", "failed to insert habit", cause)

		assert.Equal(t, "create operation on habit failed: failed to insert habit: connection reset", err.Error())
		assert.ErrorIs(t, err, cause)
		assert.True(t, IsPersistenceError(fmt.Errorf("toggle: %w", err)))
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := NewStoreError("mood", "upsert", "no rows written", nil)
		assert.Equal(t, "upsert operation on mood failed: no rows written", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("not found is not a persistence error", func(t *testing.T) {
		assert.False(t, IsPersistenceError(ErrHabitNotFound))
	})
}
