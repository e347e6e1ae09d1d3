package api

import (
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/service/tracker"
)

// CreateHabitRequest defines the payload for creating a habit.
type CreateHabitRequest struct {
	Name        string `json:"name"                  validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Priority    string `json:"priority"              validate:"required,oneof=low medium high"`
}

// UpdateHabitRequest defines the payload for editing a habit. Omitted
// fields are left unchanged.
type UpdateHabitRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Priority    *string `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high"`
}

// Changes converts the request to domain changes.
func (r UpdateHabitRequest) Changes() domain.HabitChanges {
	changes := domain.HabitChanges{Name: r.Name, Description: r.Description}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		changes.Priority = &p
	}
	return changes
}

// ToggleCompletionRequest defines the payload for toggling a completion.
// An empty date means today.
type ToggleCompletionRequest struct {
	Date string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateStatsRequest defines the payload for a partial stats update.
type UpdateStatsRequest struct {
	TotalCoins           *int `json:"total_coins,omitempty"            validate:"omitempty,gte=0"`
	TotalHabitsCompleted *int `json:"total_habits_completed,omitempty" validate:"omitempty,gte=0"`
	CurrentStreak        *int `json:"current_streak,omitempty"         validate:"omitempty,gte=0"`
	Level                *int `json:"level,omitempty"                  validate:"omitempty,gte=1"`
}

// Update converts the request to a domain stats update.
func (r UpdateStatsRequest) Update() domain.StatsUpdate {
	return domain.StatsUpdate{
		TotalCoins:           r.TotalCoins,
		TotalHabitsCompleted: r.TotalHabitsCompleted,
		CurrentStreak:        r.CurrentStreak,
		Level:                r.Level,
	}
}

// SaveMoodRequest defines the payload for saving a day's mood.
type SaveMoodRequest struct {
	Mood int    `json:"mood"           validate:"required,min=1,max=5"`
	Note string `json:"note,omitempty" validate:"max=1000"`
}

// PurchaseRequest defines the payload for buying an item.
type PurchaseRequest struct {
	ItemID string `json:"item_id" validate:"required,max=100"`
	Price  int    `json:"price"   validate:"gte=0"`
}

// HabitResponse is returned when a habit is created.
type HabitResponse struct {
	Habit    *domain.Habit     `json:"habit"`
	Snapshot *tracker.Snapshot `json:"snapshot"`
}
