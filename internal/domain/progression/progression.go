// Package progression derives coins and levels from completions.
//
// The tracker service updates stats incrementally with Apply and Reverse
// after each toggle; Recompute rebuilds the same values from the full ledger
// and is used to repair or verify a stored stats row.
package progression

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/domain/streak"
)

// CompletionsPerLevel is how many completions it takes to gain a level.
const CompletionsPerLevel = 10

// Level returns the level reached after total completions.
// Level is symmetric: it drops again if completions are undone.
func Level(totalCompleted int) int {
	if totalCompleted < 0 {
		return 1
	}
	return totalCompleted/CompletionsPerLevel + 1
}

// Apply returns stats with one completion worth coins added.
// The input is not modified.
func Apply(stats domain.UserStats, coins int) domain.UserStats {
	stats.TotalCoins += coins
	stats.TotalHabitsCompleted++
	stats.Level = Level(stats.TotalHabitsCompleted)
	stats.UpdatedAt = time.Now().UTC()
	return stats
}

// Reverse returns stats with one completion worth coins removed.
// ok is false when the counter is already zero, which means the stored row
// has drifted from the ledger and must be recomputed instead.
func Reverse(stats domain.UserStats, coins int) (domain.UserStats, bool) {
	return ReverseN(stats, coins, 1)
}

// ReverseN removes n completions worth coins each, as when a habit and its
// history are deleted together.
func ReverseN(stats domain.UserStats, coins, n int) (domain.UserStats, bool) {
	if n == 0 {
		return stats, true
	}
	if stats.TotalHabitsCompleted < n {
		return stats, false
	}
	stats.TotalCoins -= coins * n
	stats.TotalHabitsCompleted -= n
	stats.Level = Level(stats.TotalHabitsCompleted)
	stats.UpdatedAt = time.Now().UTC()
	return stats, true
}

// Recompute rebuilds a user's stats from scratch. Completions that reference
// a habit not in habits are ignored, matching the delete cascade.
func Recompute(
	userID uuid.UUID,
	habits []*domain.Habit,
	ledger map[uuid.UUID][]domain.Day,
	purchases []*domain.Purchase,
	today domain.Day,
) domain.UserStats {
	stats := domain.UserStats{UserID: userID}

	live := make(map[uuid.UUID][]domain.Day, len(ledger))
	for _, h := range habits {
		days := streak.UniqueSorted(ledger[h.ID])
		live[h.ID] = days
		stats.TotalHabitsCompleted += len(days)
		stats.TotalCoins += len(days) * h.CoinsPerCompletion
	}

	for _, p := range purchases {
		stats.TotalCoins -= p.Price
	}

	stats.Level = Level(stats.TotalHabitsCompleted)
	stats.CurrentStreak = streak.CrossHabit(live, today)
	stats.UpdatedAt = time.Now().UTC()
	return stats
}

// Drift lists the fields where stored differs from derived. An empty result
// means the stored row is consistent with the ledger.
func Drift(stored, derived domain.UserStats) []string {
	var fields []string
	if stored.TotalCoins != derived.TotalCoins {
		fields = append(fields, "total_coins")
	}
	if stored.TotalHabitsCompleted != derived.TotalHabitsCompleted {
		fields = append(fields, "total_habits_completed")
	}
	if stored.CurrentStreak != derived.CurrentStreak {
		fields = append(fields, "current_streak")
	}
	if stored.Level != derived.Level {
		fields = append(fields, "level")
	}
	return fields
}
