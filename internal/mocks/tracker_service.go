package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/service/tracker"
)

// MockTrackerService implements tracker.Service for testing.
// Unset functions return Snapshot (or the matching default) and DefaultError.
type MockTrackerService struct {
	LoadAllFn          func(ctx context.Context, userID uuid.UUID) (*tracker.Snapshot, error)
	SaveHabitFn        func(ctx context.Context, userID uuid.UUID, input tracker.HabitInput) (*domain.Habit, *tracker.Snapshot, error)
	UpdateHabitFn      func(ctx context.Context, userID, habitID uuid.UUID, changes domain.HabitChanges) (*tracker.Snapshot, error)
	DeleteHabitFn      func(ctx context.Context, userID, habitID uuid.UUID) (*tracker.Snapshot, error)
	ToggleCompletionFn func(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) (*tracker.ToggleResult, error)
	UpdateUserStatsFn  func(ctx context.Context, userID uuid.UUID, update domain.StatsUpdate) (*tracker.Snapshot, error)
	SaveMoodEntryFn    func(ctx context.Context, userID uuid.UUID, input tracker.MoodInput) (*tracker.Snapshot, error)
	PurchaseItemFn     func(ctx context.Context, userID uuid.UUID, itemID string, price int) (*tracker.Snapshot, error)
	RecomputeStatsFn   func(ctx context.Context, userID uuid.UUID, apply bool) (*tracker.RecomputeReport, error)

	// Default return values
	Snapshot     *tracker.Snapshot
	Habit        *domain.Habit
	Toggle       *tracker.ToggleResult
	Report       *tracker.RecomputeReport
	DefaultError error

	mu    sync.Mutex
	calls []string
}

var _ tracker.Service = (*MockTrackerService)(nil)

func (m *MockTrackerService) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls returns the names of the methods invoked so far, in order.
func (m *MockTrackerService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// LoadAll implements tracker.Service.
func (m *MockTrackerService) LoadAll(ctx context.Context, userID uuid.UUID) (*tracker.Snapshot, error) {
	m.record("LoadAll")
	if m.LoadAllFn != nil {
		return m.LoadAllFn(ctx, userID)
	}
	return m.Snapshot, m.DefaultError
}

// SaveHabit implements tracker.Service.
func (m *MockTrackerService) SaveHabit(
	ctx context.Context,
	userID uuid.UUID,
	input tracker.HabitInput,
) (*domain.Habit, *tracker.Snapshot, error) {
	m.record("SaveHabit")
	if m.SaveHabitFn != nil {
		return m.SaveHabitFn(ctx, userID, input)
	}
	return m.Habit, m.Snapshot, m.DefaultError
}

// UpdateHabit implements tracker.Service.
func (m *MockTrackerService) UpdateHabit(
	ctx context.Context,
	userID, habitID uuid.UUID,
	changes domain.HabitChanges,
) (*tracker.Snapshot, error) {
	m.record("UpdateHabit")
	if m.UpdateHabitFn != nil {
		return m.UpdateHabitFn(ctx, userID, habitID, changes)
	}
	return m.Snapshot, m.DefaultError
}

// DeleteHabit implements tracker.Service.
func (m *MockTrackerService) DeleteHabit(ctx context.Context, userID, habitID uuid.UUID) (*tracker.Snapshot, error) {
	m.record("DeleteHabit")
	if m.DeleteHabitFn != nil {
		return m.DeleteHabitFn(ctx, userID, habitID)
	}
	return m.Snapshot, m.DefaultError
}

// ToggleCompletion implements tracker.Service.
func (m *MockTrackerService) ToggleCompletion(
	ctx context.Context,
	userID, habitID uuid.UUID,
	day domain.Day,
) (*tracker.ToggleResult, error) {
	m.record("ToggleCompletion")
	if m.ToggleCompletionFn != nil {
		return m.ToggleCompletionFn(ctx, userID, habitID, day)
	}
	return m.Toggle, m.DefaultError
}

// UpdateUserStats implements tracker.Service.
func (m *MockTrackerService) UpdateUserStats(
	ctx context.Context,
	userID uuid.UUID,
	update domain.StatsUpdate,
) (*tracker.Snapshot, error) {
	m.record("UpdateUserStats")
	if m.UpdateUserStatsFn != nil {
		return m.UpdateUserStatsFn(ctx, userID, update)
	}
	return m.Snapshot, m.DefaultError
}

// SaveMoodEntry implements tracker.Service.
func (m *MockTrackerService) SaveMoodEntry(
	ctx context.Context,
	userID uuid.UUID,
	input tracker.MoodInput,
) (*tracker.Snapshot, error) {
	m.record("SaveMoodEntry")
	if m.SaveMoodEntryFn != nil {
		return m.SaveMoodEntryFn(ctx, userID, input)
	}
	return m.Snapshot, m.DefaultError
}

// PurchaseItem implements tracker.Service.
func (m *MockTrackerService) PurchaseItem(
	ctx context.Context,
	userID uuid.UUID,
	itemID string,
	price int,
) (*tracker.Snapshot, error) {
	m.record("PurchaseItem")
	if m.PurchaseItemFn != nil {
		return m.PurchaseItemFn(ctx, userID, itemID, price)
	}
	return m.Snapshot, m.DefaultError
}

// RecomputeStats implements tracker.Service.
func (m *MockTrackerService) RecomputeStats(
	ctx context.Context,
	userID uuid.UUID,
	apply bool,
) (*tracker.RecomputeReport, error) {
	m.record("RecomputeStats")
	if m.RecomputeStatsFn != nil {
		return m.RecomputeStatsFn(ctx, userID, apply)
	}
	return m.Report, m.DefaultError
}
