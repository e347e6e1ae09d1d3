package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
)

type moodStore struct {
	v view
}

var _ store.MoodStore = (*moodStore)(nil)

func (s *moodStore) Upsert(ctx context.Context, entry *domain.MoodEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	return s.v.write(func(st *state) error {
		st.moods[moodKey{userID: entry.UserID, day: entry.Date}] = *entry
		return nil
	})
}

func (s *moodStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.MoodEntry, error) {
	entries := make([]*domain.MoodEntry, 0)
	err := s.v.read(func(st *state) error {
		for k, m := range st.moods {
			if k.userID == userID {
				entry := m
				entries = append(entries, &entry)
			}
		}
		return nil
	})
	sort.Slice(entries, func(i, j int) bool { return entries[j].Date.Before(entries[i].Date) })
	return entries, err
}
