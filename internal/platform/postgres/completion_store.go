package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
)

// PostgresCompletionStore implements the store.CompletionStore interface.
// Uniqueness of (habit, day) is enforced by the habit_completions_habit_day_key
// constraint.
type PostgresCompletionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCompletionStore creates a new PostgreSQL implementation of the CompletionStore interface.
func NewPostgresCompletionStore(db store.DBTX, logger *slog.Logger) *PostgresCompletionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCompletionStore{
		db:     db,
		logger: logger.With(slog.String("component", "completion_store")),
	}
}

var _ store.CompletionStore = (*PostgresCompletionStore)(nil)

// Record implements store.CompletionStore.Record
func (s *PostgresCompletionStore) Record(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) error {
	query := `
		INSERT INTO habit_completions (habit_id, user_id, completed_date)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query, habitID, userID, day.String())
	if err != nil {
		if IsUniqueViolation(err) {
			return MapUniqueViolation(err, store.ErrCompletionExists)
		}
		if IsForeignKeyViolation(err) {
			return store.ErrHabitNotFound
		}
		s.logger.Error("failed to record completion",
			slog.String("habit_id", habitID.String()),
			slog.String("date", day.String()),
			slog.String("error", err.Error()))
		return storeError("completion", "record", "failed to insert completion", err)
	}
	return nil
}

// Remove implements store.CompletionStore.Remove
func (s *PostgresCompletionStore) Remove(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) error {
	query := `
		DELETE FROM habit_completions
		WHERE habit_id = $1 AND user_id = $2 AND completed_date = $3
	`
	result, err := s.db.ExecContext(ctx, query, habitID, userID, day.String())
	if err != nil {
		s.logger.Error("failed to remove completion",
			slog.String("habit_id", habitID.String()),
			slog.String("date", day.String()),
			slog.String("error", err.Error()))
		return storeError("completion", "remove", "failed to delete completion", err)
	}
	return CheckRowsAffected(result, store.ErrCompletionNotFound)
}

// Exists implements store.CompletionStore.Exists
func (s *PostgresCompletionStore) Exists(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM habit_completions
			WHERE habit_id = $1 AND user_id = $2 AND completed_date = $3
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, habitID, userID, day.String()).Scan(&exists); err != nil {
		return false, storeError("completion", "exists", "failed to query completion", err)
	}
	return exists, nil
}

// ListByUser implements store.CompletionStore.ListByUser
func (s *PostgresCompletionStore) ListByUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID][]domain.Day, error) {
	query := `
		SELECT habit_id, completed_date FROM habit_completions
		WHERE user_id = $1
		ORDER BY habit_id, completed_date
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeError("completion", "list", "failed to query completions", err)
	}
	defer func() { _ = rows.Close() }()

	ledger := make(map[uuid.UUID][]domain.Day)
	for rows.Next() {
		var (
			habitID uuid.UUID
			date    time.Time
		)
		if err := rows.Scan(&habitID, &date); err != nil {
			return nil, storeError("completion", "list", "failed to scan completion", err)
		}
		ledger[habitID] = append(ledger[habitID], domain.DayOf(date, time.UTC))
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("completion", "list", "failed to iterate completions", err)
	}
	return ledger, nil
}

// ListByHabit implements store.CompletionStore.ListByHabit
func (s *PostgresCompletionStore) ListByHabit(ctx context.Context, userID, habitID uuid.UUID) ([]domain.Day, error) {
	query := `
		SELECT completed_date FROM habit_completions
		WHERE habit_id = $1 AND user_id = $2
		ORDER BY completed_date
	`
	rows, err := s.db.QueryContext(ctx, query, habitID, userID)
	if err != nil {
		return nil, storeError("completion", "list", "failed to query completions", err)
	}
	defer func() { _ = rows.Close() }()

	days := make([]domain.Day, 0)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, storeError("completion", "list", "failed to scan completion", err)
		}
		days = append(days, domain.DayOf(date, time.UTC))
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("completion", "list", "failed to iterate completions", err)
	}
	return days, nil
}
