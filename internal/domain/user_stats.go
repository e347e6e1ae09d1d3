package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for UserStats
var (
	ErrEmptyStatsUserID  = errors.New("user stats user ID cannot be empty")
	ErrNegativeStatValue = errors.New("stat values cannot be negative")
	ErrLevelMismatch     = errors.New("level does not match completion count")
)

// UserStats holds a user's progression. Every field is derived from the
// completion ledger and purchase history; the stored row is a cache that the
// recompute path can always rebuild.
type UserStats struct {
	UserID               uuid.UUID `json:"-"`
	TotalCoins           int       `json:"total_coins"`
	TotalHabitsCompleted int       `json:"total_habits_completed"`
	CurrentStreak        int       `json:"current_streak"`
	Level                int       `json:"level"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewUserStats returns the starting stats for a user: no coins, level 1.
func NewUserStats(userID uuid.UUID) *UserStats {
	return &UserStats{
		UserID:    userID,
		Level:     1,
		UpdatedAt: time.Now().UTC(),
	}
}

// Validate checks if the UserStats has valid data.
// The coin balance is not checked: undoing a completion whose reward was
// already spent leaves it below zero.
func (s *UserStats) Validate() error {
	if s.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrEmptyStatsUserID)
	}
	if s.TotalHabitsCompleted < 0 {
		return NewValidationError("total_habits_completed", "cannot be negative", ErrNegativeStatValue)
	}
	if s.CurrentStreak < 0 {
		return NewValidationError("current_streak", "cannot be negative", ErrNegativeStatValue)
	}
	if s.Level < 1 {
		return NewValidationError("level", "must be at least 1", ErrValidation)
	}
	return nil
}

// StatsUpdate is an explicit partial update of UserStats. Nil fields are
// left unchanged.
type StatsUpdate struct {
	TotalCoins           *int `json:"total_coins,omitempty"`
	TotalHabitsCompleted *int `json:"total_habits_completed,omitempty"`
	CurrentStreak        *int `json:"current_streak,omitempty"`
	Level                *int `json:"level,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u StatsUpdate) IsEmpty() bool {
	return u.TotalCoins == nil && u.TotalHabitsCompleted == nil &&
		u.CurrentStreak == nil && u.Level == nil
}

// Purchase records that a user bought a catalog item. Purchases are never
// removed; the price is kept so balances can be recomputed.
type Purchase struct {
	UserID      uuid.UUID `json:"-"`
	ItemID      string    `json:"item_id"`
	Price       int       `json:"price"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// ErrEmptyItemID is returned when a purchase has no item id.
var ErrEmptyItemID = errors.New("item ID cannot be empty")

// NewPurchase creates a validated Purchase.
func NewPurchase(userID uuid.UUID, itemID string, price int) (*Purchase, error) {
	p := &Purchase{
		UserID:      userID,
		ItemID:      itemID,
		Price:       price,
		PurchasedAt: time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks if the Purchase has valid data.
func (p *Purchase) Validate() error {
	if p.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrInvalidID)
	}
	if p.ItemID == "" {
		return NewValidationError("item_id", "is required", ErrEmptyItemID)
	}
	if p.Price < 0 {
		return NewValidationError("price", "cannot be negative", ErrValidation)
	}
	return nil
}
