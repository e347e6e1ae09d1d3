package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
)

// HabitStore defines the interface for habit data persistence.
// Every method is scoped by user ID; a habit owned by another user is
// reported as ErrHabitNotFound.
type HabitStore interface {
	// Create saves a new habit.
	// Returns validation errors from the domain Habit if data is invalid.
	Create(ctx context.Context, habit *domain.Habit) error

	// Get retrieves a habit by user and habit ID.
	// Returns ErrHabitNotFound if the habit does not exist.
	Get(ctx context.Context, userID, habitID uuid.UUID) (*domain.Habit, error)

	// ListByUser returns the user's habits, newest first.
	// Returns an empty slice if the user has no habits.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Habit, error)

	// Update saves the editable fields of an existing habit.
	// Returns ErrHabitNotFound if the habit does not exist.
	Update(ctx context.Context, habit *domain.Habit) error

	// Delete removes a habit and, through the cascade, all of its completions.
	// Returns ErrHabitNotFound if the habit does not exist.
	Delete(ctx context.Context, userID, habitID uuid.UUID) error
}

// CompletionStore is the ledger of habit completions.
// A (habit, day) pair is recorded at most once.
type CompletionStore interface {
	// Record adds a completion.
	// Returns ErrCompletionExists if the pair is already recorded.
	Record(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) error

	// Remove deletes a completion.
	// Returns ErrCompletionNotFound if the pair is not recorded.
	Remove(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) error

	// Exists reports whether the pair is recorded.
	Exists(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) (bool, error)

	// ListByUser returns every completion of the user keyed by habit ID,
	// each slice sorted ascending.
	ListByUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID][]domain.Day, error)

	// ListByHabit returns a single habit's completions sorted ascending.
	ListByHabit(ctx context.Context, userID, habitID uuid.UUID) ([]domain.Day, error)
}

// UserStatsStore defines the interface for the per-user stats row.
type UserStatsStore interface {
	// Get retrieves the user's stats.
	// Returns ErrUserStatsNotFound if no row exists yet.
	// NOTE: This method does NOT provide any row locking.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)

	// GetForUpdate retrieves the user's stats with a row-level lock.
	// This should be used within a transaction when the row will be updated.
	// Returns ErrUserStatsNotFound if no row exists yet.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)

	// Upsert creates or replaces the user's stats row.
	Upsert(ctx context.Context, stats *domain.UserStats) error
}

// MoodStore defines the interface for mood entry persistence.
type MoodStore interface {
	// Upsert saves the entry, replacing any entry for the same user and day.
	Upsert(ctx context.Context, entry *domain.MoodEntry) error

	// ListByUser returns the user's entries, newest day first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.MoodEntry, error)
}

// PurchaseStore defines the interface for purchased items.
// Purchases are never deleted.
type PurchaseStore interface {
	// Create records a purchase.
	// Returns ErrItemAlreadyOwned if the user already owns the item.
	Create(ctx context.Context, purchase *domain.Purchase) error

	// ListByUser returns the user's purchases, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Purchase, error)
}

// Stores bundles the stores that a unit of work may touch.
type Stores struct {
	Habits      HabitStore
	Completions CompletionStore
	Stats       UserStatsStore
	Moods       MoodStore
	Purchases   PurchaseStore
}

// StoresTxFn is a function that runs against transaction-bound stores.
type StoresTxFn func(ctx context.Context, s Stores) error

// TxRunner gives access to the stores, both directly and within a
// transaction. Implementations commit when fn returns nil and roll back
// every write made through s otherwise.
type TxRunner interface {
	// Stores returns stores that operate outside any transaction.
	Stores() Stores

	// RunInTx runs fn with stores bound to a single transaction.
	RunInTx(ctx context.Context, fn StoresTxFn) error
}
