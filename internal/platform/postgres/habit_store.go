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

// PostgresHabitStore implements the store.HabitStore interface
// using a PostgreSQL database as the storage backend.
type PostgresHabitStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresHabitStore creates a new PostgreSQL implementation of the HabitStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresHabitStore(db store.DBTX, logger *slog.Logger) *PostgresHabitStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresHabitStore{
		db:     db,
		logger: logger.With(slog.String("component", "habit_store")),
	}
}

// Ensure PostgresHabitStore implements store.HabitStore interface
var _ store.HabitStore = (*PostgresHabitStore)(nil)

const habitColumns = `id, user_id, name, description, priority, coins_per_completion, created_at, updated_at`

// Create implements store.HabitStore.Create
func (s *PostgresHabitStore) Create(ctx context.Context, habit *domain.Habit) error {
	if err := habit.Validate(); err != nil {
		s.logger.Debug("habit validation failed",
			slog.String("habit_id", habit.ID.String()),
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO habits (` + habitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		habit.ID, habit.UserID, habit.Name, habit.Description, string(habit.Priority),
		habit.CoinsPerCompletion, habit.CreatedAt, habit.UpdatedAt)
	if err != nil {
		s.logger.Error("failed to insert habit",
			slog.String("habit_id", habit.ID.String()),
			slog.String("error", err.Error()))
		return storeError("habit", "create", "failed to insert habit", err)
	}

	s.logger.Debug("habit created",
		slog.String("habit_id", habit.ID.String()),
		slog.String("user_id", habit.UserID.String()))
	return nil
}

// Get implements store.HabitStore.Get
func (s *PostgresHabitStore) Get(ctx context.Context, userID, habitID uuid.UUID) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2`

	habit, err := scanHabit(s.db.QueryRowContext(ctx, query, habitID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrHabitNotFound
		}
		s.logger.Error("failed to get habit",
			slog.String("habit_id", habitID.String()),
			slog.String("error", err.Error()))
		return nil, storeError("habit", "get", "failed to query habit", err)
	}
	return habit, nil
}

// ListByUser implements store.HabitStore.ListByUser
func (s *PostgresHabitStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1 ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeError("habit", "list", "failed to query habits", err)
	}
	defer func() { _ = rows.Close() }()

	habits := make([]*domain.Habit, 0)
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, storeError("habit", "list", "failed to scan habit", err)
		}
		habits = append(habits, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("habit", "list", "failed to iterate habits", err)
	}
	return habits, nil
}

// Update implements store.HabitStore.Update
// coins_per_completion is not part of the update.
func (s *PostgresHabitStore) Update(ctx context.Context, habit *domain.Habit) error {
	if err := habit.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE habits
		SET name = $1, description = $2, priority = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`
	result, err := s.db.ExecContext(ctx, query,
		habit.Name, habit.Description, string(habit.Priority), habit.UpdatedAt, habit.ID, habit.UserID)
	if err != nil {
		s.logger.Error("failed to update habit",
			slog.String("habit_id", habit.ID.String()),
			slog.String("error", err.Error()))
		return storeError("habit", "update", "failed to update habit", err)
	}
	return CheckRowsAffected(result, store.ErrHabitNotFound)
}

// Delete implements store.HabitStore.Delete
// Completions are removed by the ON DELETE CASCADE foreign key.
func (s *PostgresHabitStore) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM habits WHERE id = $1 AND user_id = $2`, habitID, userID)
	if err != nil {
		s.logger.Error("failed to delete habit",
			slog.String("habit_id", habitID.String()),
			slog.String("error", err.Error()))
		return storeError("habit", "delete", "failed to delete habit", err)
	}
	return CheckRowsAffected(result, store.ErrHabitNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (*domain.Habit, error) {
	var (
		h        domain.Habit
		priority string
	)
	if err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Description, &priority,
		&h.CoinsPerCompletion, &h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		return nil, err
	}
	h.Priority = domain.Priority(priority)
	return &h, nil
}
