package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
)

// PostgresUserStatsStore implements the store.UserStatsStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStatsStore creates a new PostgreSQL implementation of the UserStatsStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStatsStore(db store.DBTX, logger *slog.Logger) *PostgresUserStatsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_stats_store")),
	}
}

// Ensure PostgresUserStatsStore implements store.UserStatsStore interface
var _ store.UserStatsStore = (*PostgresUserStatsStore)(nil)

const statsSelect = `
	SELECT user_id, total_coins, total_habits_completed, current_streak, level, updated_at
	FROM user_stats
	WHERE user_id = $1
`

// Get implements store.UserStatsStore.Get
func (s *PostgresUserStatsStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	return s.get(ctx, userID, statsSelect)
}

// GetForUpdate implements store.UserStatsStore.GetForUpdate
// The row stays locked until the surrounding transaction ends.
func (s *PostgresUserStatsStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	return s.get(ctx, userID, statsSelect+` FOR UPDATE`)
}

func (s *PostgresUserStatsStore) get(ctx context.Context, userID uuid.UUID, query string) (*domain.UserStats, error) {
	var stats domain.UserStats
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.UserID,
		&stats.TotalCoins,
		&stats.TotalHabitsCompleted,
		&stats.CurrentStreak,
		&stats.Level,
		&stats.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserStatsNotFound
		}
		s.logger.Error("failed to get user stats",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, storeError("user_stats", "get", "failed to query user stats", err)
	}
	return &stats, nil
}

// Upsert implements store.UserStatsStore.Upsert
func (s *PostgresUserStatsStore) Upsert(ctx context.Context, stats *domain.UserStats) error {
	if err := stats.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO user_stats (user_id, total_coins, total_habits_completed, current_streak, level, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			total_coins = EXCLUDED.total_coins,
			total_habits_completed = EXCLUDED.total_habits_completed,
			current_streak = EXCLUDED.current_streak,
			level = EXCLUDED.level,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		stats.UserID, stats.TotalCoins, stats.TotalHabitsCompleted,
		stats.CurrentStreak, stats.Level, stats.UpdatedAt)
	if err != nil {
		s.logger.Error("failed to upsert user stats",
			slog.String("user_id", stats.UserID.String()),
			slog.String("error", err.Error()))
		return storeError("user_stats", "upsert", "failed to write user stats", err)
	}
	return nil
}
