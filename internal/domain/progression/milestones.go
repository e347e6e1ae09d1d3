package progression

import "github.com/phrazzld/habit-api/internal/domain"

// Achievement is a milestone unlocked by a user's stats.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type milestone struct {
	Achievement
	reached func(stats domain.UserStats, habitCount int) bool
}

// milestones are listed in display order.
var milestones = []milestone{
	{
		Achievement{ID: "first_10", Name: "First 10", Description: "Complete 10 habits"},
		func(s domain.UserStats, _ int) bool { return s.TotalHabitsCompleted >= 10 },
	},
	{
		Achievement{ID: "half_century", Name: "Half Century", Description: "Complete 50 habits"},
		func(s domain.UserStats, _ int) bool { return s.TotalHabitsCompleted >= 50 },
	},
	{
		Achievement{ID: "centurion", Name: "Centurion", Description: "Complete 100 habits"},
		func(s domain.UserStats, _ int) bool { return s.TotalHabitsCompleted >= 100 },
	},
	{
		Achievement{ID: "week_warrior", Name: "Week Warrior", Description: "7 day streak"},
		func(s domain.UserStats, _ int) bool { return s.CurrentStreak >= 7 },
	},
	{
		Achievement{ID: "month_master", Name: "Month Master", Description: "30 day streak"},
		func(s domain.UserStats, _ int) bool { return s.CurrentStreak >= 30 },
	},
	{
		Achievement{ID: "coin_collector", Name: "Coin Collector", Description: "Earn 1000 coins"},
		func(s domain.UserStats, _ int) bool { return s.TotalCoins >= 1000 },
	},
	{
		Achievement{ID: "habit_hero", Name: "Habit Hero", Description: "Track 5 habits"},
		func(_ domain.UserStats, habitCount int) bool { return habitCount >= 5 },
	},
}

// Achievements returns the milestones reached by stats for a user tracking
// habitCount habits. The result is never nil.
func Achievements(stats domain.UserStats, habitCount int) []Achievement {
	unlocked := make([]Achievement, 0, len(milestones))
	for _, m := range milestones {
		if m.reached(stats, habitCount) {
			unlocked = append(unlocked, m.Achievement)
		}
	}
	return unlocked
}

// LevelProgress describes how far a user is into their current level.
type LevelProgress struct {
	Level int `json:"level"`
	// HabitsForNextLevel is the total completion count at which the next
	// level starts.
	HabitsForNextLevel int `json:"habits_for_next_level"`
	// Percent of the current level completed, in steps of 10.
	Percent int `json:"percent"`
}

// ProgressToNextLevel derives level progress from the completion count.
func ProgressToNextLevel(stats domain.UserStats) LevelProgress {
	total := max(stats.TotalHabitsCompleted, 0)
	level := Level(total)
	return LevelProgress{
		Level:              level,
		HabitsForNextLevel: level * CompletionsPerLevel,
		Percent:            total % CompletionsPerLevel * (100 / CompletionsPerLevel),
	}
}

// BestStreak returns the longest streak any habit has reached, or 0.
func BestStreak(habits []domain.HabitView) int {
	best := 0
	for _, h := range habits {
		best = max(best, h.LongestStreak)
	}
	return best
}
