// Package streak computes streak metrics from completion dates.
//
// All functions are pure: they take calendar days and a reference day and
// never touch the clock or the store, so they are safe to call concurrently
// on a loaded snapshot.
package streak

import (
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
)

// Streaks holds the two per-habit streak metrics.
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// ForHabit returns the current and longest streak of one habit.
// Longest is never less than Current.
func ForHabit(days []domain.Day, today domain.Day) Streaks {
	return Streaks{
		Current: Current(days, today),
		Longest: Longest(days),
	}
}

// Current counts consecutive days present in days, walking backwards from
// today. If today itself is absent the streak is 0.
func Current(days []domain.Day, today domain.Day) int {
	if len(days) == 0 {
		return 0
	}
	return walkBack(toSet(days), today)
}

// Longest returns the length of the longest run of consecutive calendar days
// in days. Duplicates are ignored and order does not matter.
func Longest(days []domain.Day) int {
	sorted := UniqueSorted(days)
	if len(sorted) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].AddDays(1) == sorted[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// CrossHabit returns the user-wide activity streak: the number of
// consecutive days, ending at today, on which at least one habit was
// completed. Different habits may carry different days of the run.
func CrossHabit(byHabit map[uuid.UUID][]domain.Day, today domain.Day) int {
	active := make(map[domain.Day]struct{})
	for _, days := range byHabit {
		for _, d := range days {
			active[d] = struct{}{}
		}
	}
	if len(active) == 0 {
		return 0
	}
	return walkBack(active, today)
}

// walkBack counts how many days starting at today and stepping backwards are
// members of set. The walk is bounded by the set size, since each counted
// day must be a distinct member.
func walkBack(set map[domain.Day]struct{}, today domain.Day) int {
	count := 0
	for d := today; count < len(set); d = d.AddDays(-1) {
		if _, ok := set[d]; !ok {
			break
		}
		count++
	}
	return count
}

func toSet(days []domain.Day) map[domain.Day]struct{} {
	set := make(map[domain.Day]struct{}, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	return set
}

// UniqueSorted returns the distinct days in ascending order.
func UniqueSorted(days []domain.Day) []domain.Day {
	set := toSet(days)
	out := make([]domain.Day, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
