package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewUserStats(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	stats := NewUserStats(userID)
	if stats.Level != 1 {
		t.Errorf("Expected starting level 1, got %d", stats.Level)
	}
	if stats.TotalCoins != 0 || stats.TotalHabitsCompleted != 0 || stats.CurrentStreak != 0 {
		t.Errorf("Expected zero counters, got %+v", stats)
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Expected valid stats, got %v", err)
	}
}

func TestUserStatsValidate(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	testCases := []struct {
		name  string
		stats UserStats
		err   error
	}{
		{"missing user", UserStats{Level: 1}, ErrEmptyStatsUserID},
		{"negative streak", UserStats{UserID: userID, CurrentStreak: -1, Level: 1}, ErrNegativeStatValue},
		{"negative count", UserStats{UserID: userID, TotalHabitsCompleted: -1, Level: 1}, ErrNegativeStatValue},
		{"zero level", UserStats{UserID: userID}, ErrValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.stats.Validate()
			if !errors.Is(err, tc.err) {
				t.Errorf("Expected error %v, got %v", tc.err, err)
			}
		})
	}
}

func TestUserStatsValidateAllowsNegativeBalance(t *testing.T) {
	t.Parallel()

	stats := UserStats{UserID: uuid.New(), TotalCoins: -30, Level: 1}
	if err := stats.Validate(); err != nil {
		t.Errorf("Expected no error for spent-then-undone balance, got %v", err)
	}
}

func TestNewMoodEntry(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	entry, err := NewMoodEntry(userID, "2024-01-05", 4, " good day ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if entry.Note != "good day" {
		t.Errorf("Expected trimmed note, got %q", entry.Note)
	}

	for _, mood := range []int{0, 6, -1} {
		if _, err := NewMoodEntry(userID, "2024-01-05", mood, ""); !errors.Is(err, ErrInvalidMood) {
			t.Errorf("mood %d: expected %v, got %v", mood, ErrInvalidMood, err)
		}
	}

	if _, err := NewMoodEntry(userID, "yesterday", 3, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for bad date, got %v", err)
	}
}

func TestNewPurchase(t *testing.T) {
	t.Parallel()

	if _, err := NewPurchase(uuid.New(), "", 100); !errors.Is(err, ErrEmptyItemID) {
		t.Errorf("Expected %v, got %v", ErrEmptyItemID, err)
	}
	if _, err := NewPurchase(uuid.New(), "2", -5); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for negative price, got %v", err)
	}
	p, err := NewPurchase(uuid.New(), "2", 200)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if p.PurchasedAt.IsZero() {
		t.Error("Expected non-zero PurchasedAt")
	}
}
