// Package tracker coordinates every change to a user's habit ledger and
// keeps the derived statistics consistent with it.
//
// Each mutation runs under a per-user lock and inside one store transaction,
// then reloads the user's snapshot from the store and returns it, so callers
// always render persisted state.
package tracker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
)

// Service is the application interface of the habit tracker.
type Service interface {
	// LoadAll reads the user's habits, completions, stats, mood entries and
	// purchases and derives streaks against today.
	//
	// Returns:
	//   - (*Snapshot, nil): the user's current state; a user with no data gets
	//     an empty snapshot with level-1 stats
	//   - (nil, error): a persistence failure from any of the reads
	LoadAll(ctx context.Context, userID uuid.UUID) (*Snapshot, error)

	// SaveHabit creates a habit. The reward per completion is fixed from the
	// priority at this point.
	SaveHabit(ctx context.Context, userID uuid.UUID, input HabitInput) (*domain.Habit, *Snapshot, error)

	// UpdateHabit edits a habit's name, description or priority.
	// Returns store.ErrHabitNotFound if the habit does not belong to the user.
	UpdateHabit(
		ctx context.Context,
		userID, habitID uuid.UUID,
		changes domain.HabitChanges,
	) (*Snapshot, error)

	// DeleteHabit removes a habit with its completion history and reverses the
	// rewards those completions granted, in one transaction.
	DeleteHabit(ctx context.Context, userID, habitID uuid.UUID) (*Snapshot, error)

	// ToggleCompletion flips whether the habit is completed on day. An empty
	// day means today in the service's time zone.
	//
	// This method performs several operations within a single transaction:
	// 1. Verifies the habit exists and belongs to the user
	// 2. Locks the user's stats row
	// 3. Reads ledger membership from the store and adds or removes the completion
	// 4. Applies or reverses the reward and recomputes the cross-habit streak
	// 5. Persists the stats
	//
	// Returns:
	//   - (*ToggleResult, nil): the direction taken and the reloaded snapshot
	//   - (nil, ValidationError): day is malformed or in the future
	//   - (nil, store.ErrHabitNotFound): the habit does not belong to the user
	//   - (nil, error): any persistence failure; nothing was written
	//   - (*ToggleResult, ErrSnapshotReload): the toggle was committed but the
	//     snapshot reload failed; the result has no Snapshot
	ToggleCompletion(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) (*ToggleResult, error)

	// UpdateUserStats applies an explicit partial update to the stats row.
	UpdateUserStats(ctx context.Context, userID uuid.UUID, update domain.StatsUpdate) (*Snapshot, error)

	// SaveMoodEntry records the mood for a day, replacing any earlier entry.
	SaveMoodEntry(ctx context.Context, userID uuid.UUID, input MoodInput) (*Snapshot, error)

	// PurchaseItem spends price coins on itemID.
	// Returns domain.ErrInsufficientCoins or store.ErrItemAlreadyOwned.
	PurchaseItem(ctx context.Context, userID uuid.UUID, itemID string, price int) (*Snapshot, error)

	// RecomputeStats rebuilds the stats from the ledger and reports drift.
	// The rebuilt row is written only when apply is true.
	RecomputeStats(ctx context.Context, userID uuid.UUID, apply bool) (*RecomputeReport, error)
}

// HabitInput holds the fields of a new habit.
type HabitInput struct {
	Name        string
	Description string
	Priority    domain.Priority
}

// MoodInput holds a mood entry to save.
type MoodInput struct {
	Date domain.Day
	Mood int
	Note string
}

// ToggleResult reports the outcome of ToggleCompletion.
type ToggleResult struct {
	HabitID   uuid.UUID  `json:"habit_id"`
	Date      domain.Day `json:"date"`
	Completed bool       `json:"completed"`
	Snapshot  *Snapshot  `json:"snapshot"`
}

// RecomputeReport compares the stored stats with the stats derived from the
// ledger.
type RecomputeReport struct {
	Stored   domain.UserStats `json:"stored"`
	Derived  domain.UserStats `json:"derived"`
	Drift    []string         `json:"drift"`
	Applied  bool             `json:"applied"`
	Snapshot *Snapshot        `json:"snapshot"`
}

// Recorder receives operation metrics. *metrics.Metrics implements it.
type Recorder interface {
	ObserveOperation(operation string, start time.Time, err error)
	ObserveToggle(completed bool)
	ObserveDrift(fields []string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveOperation(string, time.Time, error) {}
func (noopRecorder) ObserveToggle(bool) {}
func (noopRecorder) ObserveDrift([]string) {}
