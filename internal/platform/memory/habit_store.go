package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
)

type habitStore struct {
	v view
}

var _ store.HabitStore = (*habitStore)(nil)

func (s *habitStore) Create(ctx context.Context, habit *domain.Habit) error {
	if err := habit.Validate(); err != nil {
		return err
	}
	return s.v.write(func(st *state) error {
		if _, ok := st.habits[habit.ID]; ok {
			return store.ErrDuplicate
		}
		st.habits[habit.ID] = &habitRecord{habit: *habit, days: make(map[domain.Day]struct{})}
		return nil
	})
}

func (s *habitStore) Get(ctx context.Context, userID, habitID uuid.UUID) (*domain.Habit, error) {
	var out domain.Habit
	err := s.v.read(func(st *state) error {
		rec, err := lookupHabit(st, userID, habitID)
		if err != nil {
			return err
		}
		out = rec.habit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *habitStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Habit, error) {
	habits := make([]*domain.Habit, 0)
	err := s.v.read(func(st *state) error {
		for _, rec := range st.habits {
			if rec.habit.UserID == userID {
				h := rec.habit
				habits = append(habits, &h)
			}
		}
		return nil
	})
	sort.Slice(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID.String() < habits[j].ID.String()
		}
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})
	return habits, err
}

func (s *habitStore) Update(ctx context.Context, habit *domain.Habit) error {
	if err := habit.Validate(); err != nil {
		return err
	}
	return s.v.write(func(st *state) error {
		rec, err := lookupHabit(st, habit.UserID, habit.ID)
		if err != nil {
			return err
		}
		rec.habit.Name = habit.Name
		rec.habit.Description = habit.Description
		rec.habit.Priority = habit.Priority
		rec.habit.UpdatedAt = habit.UpdatedAt
		return nil
	})
}

func (s *habitStore) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	return s.v.write(func(st *state) error {
		if _, err := lookupHabit(st, userID, habitID); err != nil {
			return err
		}
		delete(st.habits, habitID)
		return nil
	})
}

func lookupHabit(st *state, userID, habitID uuid.UUID) (*habitRecord, error) {
	rec, ok := st.habits[habitID]
	if !ok || rec.habit.UserID != userID {
		return nil, store.ErrHabitNotFound
	}
	return rec, nil
}
