package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Habit-specific validation errors
var (
	// ErrHabitIDEmpty is returned when a habit ID is empty or nil.
	ErrHabitIDEmpty = errors.New("habit ID cannot be empty")

	// ErrHabitUserIDEmpty is returned when a habit's user ID is empty or nil.
	ErrHabitUserIDEmpty = errors.New("habit user ID cannot be empty")

	// ErrHabitNameEmpty is returned when a habit's name is blank.
	ErrHabitNameEmpty = errors.New("habit name cannot be empty")

	// ErrInvalidPriority is returned when a priority is not low, medium or high.
	ErrInvalidPriority = errors.New("invalid habit priority")
)

// Field limits for habits.
const (
	MaxHabitNameLength        = 100
	MaxHabitDescriptionLength = 500
)

// Priority is the importance tier of a habit. It fixes the habit's reward.
type Priority string

// Possible priority values
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// rewardSchedule maps each priority to the coins granted per completion.
var rewardSchedule = map[Priority]int{
	PriorityLow:    10,
	PriorityMedium: 20,
	PriorityHigh:   30,
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	_, ok := rewardSchedule[p]
	return ok
}

// CoinsFor returns the reward per completion for a priority, or 0 for an
// unknown priority.
func CoinsFor(p Priority) int {
	return rewardSchedule[p]
}

// Habit is a recurring activity a user tracks. Completions live in the
// ledger, not on the habit itself; see HabitView for the derived shape.
type Habit struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Priority           Priority  `json:"priority"`
	CoinsPerCompletion int       `json:"coins_per_completion"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewHabit creates a new Habit for the user. The reward per completion is
// derived from the priority here and never changes afterwards.
// Returns an error if validation fails.
func NewHabit(userID uuid.UUID, name, description string, priority Priority) (*Habit, error) {
	now := time.Now().UTC()
	habit := &Habit{
		ID:                 uuid.New(),
		UserID:             userID,
		Name:               strings.TrimSpace(name),
		Description:        strings.TrimSpace(description),
		Priority:           priority,
		CoinsPerCompletion: CoinsFor(priority),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := habit.Validate(); err != nil {
		return nil, err
	}

	return habit, nil
}

// Validate checks if the Habit has valid data.
// Returns an error if any field fails validation.
func (h *Habit) Validate() error {
	if h.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrHabitIDEmpty)
	}

	if h.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrHabitUserIDEmpty)
	}

	if strings.TrimSpace(h.Name) == "" {
		return NewValidationError("name", "is required", ErrHabitNameEmpty)
	}

	if utf8.RuneCountInString(h.Name) > MaxHabitNameLength {
		return NewValidationError("name", "is too long", ErrValidation)
	}

	if utf8.RuneCountInString(h.Description) > MaxHabitDescriptionLength {
		return NewValidationError("description", "is too long", ErrValidation)
	}

	if !h.Priority.Valid() {
		return NewValidationError("priority", "must be low, medium or high", ErrInvalidPriority)
	}

	if h.CoinsPerCompletion < 0 {
		return NewValidationError("coins_per_completion", "cannot be negative", ErrValidation)
	}

	return nil
}

// HabitChanges lists the editable fields of a habit. Nil fields are left
// unchanged.
type HabitChanges struct {
	Name        *string
	Description *string
	Priority    *Priority
}

// Apply updates the habit with the non-nil fields of c and bumps UpdatedAt.
// CoinsPerCompletion is intentionally untouched. On validation failure the
// habit is restored to its previous state.
func (h *Habit) Apply(c HabitChanges) error {
	orig := *h

	if c.Name != nil {
		h.Name = strings.TrimSpace(*c.Name)
	}
	if c.Description != nil {
		h.Description = strings.TrimSpace(*c.Description)
	}
	if c.Priority != nil {
		h.Priority = *c.Priority
	}

	if err := h.Validate(); err != nil {
		*h = orig
		return err
	}

	h.UpdatedAt = time.Now().UTC()
	return nil
}

// HabitView is a habit together with its ledger history and the streaks
// derived from it. This is the shape clients render.
type HabitView struct {
	Habit
	CompletedDates []Day `json:"completed_dates"`
	Streak         int   `json:"streak"`
	LongestStreak  int   `json:"longest_streak"`
}
