package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/domain/streak"
	"github.com/phrazzld/habit-api/internal/store"
)

type completionStore struct {
	v view
}

var _ store.CompletionStore = (*completionStore)(nil)

func (s *completionStore) Record(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) error {
	return s.v.write(func(st *state) error {
		rec, err := lookupHabit(st, userID, habitID)
		if err != nil {
			return err
		}
		if _, ok := rec.days[day]; ok {
			return store.ErrCompletionExists
		}
		rec.days[day] = struct{}{}
		return nil
	})
}

func (s *completionStore) Remove(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) error {
	return s.v.write(func(st *state) error {
		rec, err := lookupHabit(st, userID, habitID)
		if err != nil {
			return store.ErrCompletionNotFound
		}
		if _, ok := rec.days[day]; !ok {
			return store.ErrCompletionNotFound
		}
		delete(rec.days, day)
		return nil
	})
}

func (s *completionStore) Exists(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) (bool, error) {
	var exists bool
	err := s.v.read(func(st *state) error {
		if rec, err := lookupHabit(st, userID, habitID); err == nil {
			_, exists = rec.days[day]
		}
		return nil
	})
	return exists, err
}

func (s *completionStore) ListByUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID][]domain.Day, error) {
	ledger := make(map[uuid.UUID][]domain.Day)
	err := s.v.read(func(st *state) error {
		for id, rec := range st.habits {
			if rec.habit.UserID != userID || len(rec.days) == 0 {
				continue
			}
			ledger[id] = sortedDays(rec.days)
		}
		return nil
	})
	return ledger, err
}

func (s *completionStore) ListByHabit(ctx context.Context, userID, habitID uuid.UUID) ([]domain.Day, error) {
	days := make([]domain.Day, 0)
	err := s.v.read(func(st *state) error {
		if rec, err := lookupHabit(st, userID, habitID); err == nil {
			days = sortedDays(rec.days)
		}
		return nil
	})
	return days, err
}

func sortedDays(set map[domain.Day]struct{}) []domain.Day {
	days := make([]domain.Day, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	return streak.UniqueSorted(days)
}
