package tracker

import (
	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/domain/progression"
	"github.com/phrazzld/habit-api/internal/domain/streak"
)

// Snapshot is everything a client needs to render a user's tracker.
type Snapshot struct {
	Today          domain.Day          `json:"today"`
	Habits         []domain.HabitView  `json:"habits"`
	Stats          domain.UserStats    `json:"stats"`
	MoodEntries    []*domain.MoodEntry `json:"mood_entries"`
	PurchasedItems []*domain.Purchase  `json:"purchased_items"`
	Summary        Summary             `json:"summary"`
}

// Summary holds dashboard and profile figures derived from the snapshot.
type Summary struct {
	TotalHabits    int `json:"total_habits"`
	CompletedToday int `json:"completed_today"`
	// CompletionRate is the percentage of habits completed today.
	CompletionRate float64 `json:"completion_rate"`
	// ActiveHabits counts habits with a current streak.
	ActiveHabits  int     `json:"active_habits"`
	AverageStreak float64 `json:"average_streak"`
	AverageMood   float64 `json:"average_mood"`
	// BestStreak is the longest streak any habit has reached.
	BestStreak    int                       `json:"best_streak"`
	LevelProgress progression.LevelProgress `json:"level_progress"`
	Achievements  []progression.Achievement `json:"achievements"`
}

// buildSnapshot derives per-habit views and the summary. The stats'
// CurrentStreak is replaced by the cross-habit streak as of today, since the
// stored value was computed on the day of the last toggle.
func buildSnapshot(
	today domain.Day,
	habits []*domain.Habit,
	ledger map[uuid.UUID][]domain.Day,
	stats domain.UserStats,
	moods []*domain.MoodEntry,
	purchases []*domain.Purchase,
) *Snapshot {
	snap := &Snapshot{
		Today:          today,
		Habits:         make([]domain.HabitView, 0, len(habits)),
		MoodEntries:    moods,
		PurchasedItems: purchases,
	}

	live := make(map[uuid.UUID][]domain.Day, len(habits))
	streakSum := 0
	for _, h := range habits {
		days := streak.UniqueSorted(ledger[h.ID])
		live[h.ID] = days
		s := streak.ForHabit(days, today)

		snap.Habits = append(snap.Habits, domain.HabitView{
			Habit:          *h,
			CompletedDates: days,
			Streak:         s.Current,
			LongestStreak:  s.Longest,
		})

		if s.Current > 0 {
			snap.Summary.ActiveHabits++
			streakSum += s.Current
		}
		if containsDay(days, today) {
			snap.Summary.CompletedToday++
		}
	}

	stats.CurrentStreak = streak.CrossHabit(live, today)
	snap.Stats = stats

	snap.Summary.TotalHabits = len(habits)
	snap.Summary.BestStreak = progression.BestStreak(snap.Habits)
	snap.Summary.LevelProgress = progression.ProgressToNextLevel(stats)
	snap.Summary.Achievements = progression.Achievements(stats, len(habits))
	if len(habits) > 0 {
		snap.Summary.CompletionRate = float64(snap.Summary.CompletedToday) / float64(len(habits)) * 100
	}
	if snap.Summary.ActiveHabits > 0 {
		snap.Summary.AverageStreak = float64(streakSum) / float64(snap.Summary.ActiveHabits)
	}
	if len(moods) > 0 {
		moodSum := 0
		for _, m := range moods {
			moodSum += m.Mood
		}
		snap.Summary.AverageMood = float64(moodSum) / float64(len(moods))
	}

	return snap
}

// containsDay reports whether sorted days contains d.
func containsDay(days []domain.Day, d domain.Day) bool {
	for i := len(days) - 1; i >= 0; i-- {
		if days[i] == d {
			return true
		}
		if days[i].Before(d) {
			return false
		}
	}
	return false
}
