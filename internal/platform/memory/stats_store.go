package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
)

type statsStore struct {
	v view
}

var _ store.UserStatsStore = (*statsStore)(nil)

func (s *statsStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	var out domain.UserStats
	err := s.v.read(func(st *state) error {
		stats, ok := st.stats[userID]
		if !ok {
			return store.ErrUserStatsNotFound
		}
		out = stats
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate needs no row lock: transactions are already serialized.
func (s *statsStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	return s.Get(ctx, userID)
}

func (s *statsStore) Upsert(ctx context.Context, stats *domain.UserStats) error {
	if err := stats.Validate(); err != nil {
		return err
	}
	return s.v.write(func(st *state) error {
		st.stats[stats.UserID] = *stats
		return nil
	})
}
