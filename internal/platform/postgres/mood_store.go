package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
)

// PostgresMoodStore implements the store.MoodStore interface.
type PostgresMoodStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMoodStore creates a new PostgreSQL implementation of the MoodStore interface.
func NewPostgresMoodStore(db store.DBTX, logger *slog.Logger) *PostgresMoodStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMoodStore{
		db:     db,
		logger: logger.With(slog.String("component", "mood_store")),
	}
}

var _ store.MoodStore = (*PostgresMoodStore)(nil)

// Upsert implements store.MoodStore.Upsert
func (s *PostgresMoodStore) Upsert(ctx context.Context, entry *domain.MoodEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO mood_entries (user_id, entry_date, mood, note, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, entry_date) DO UPDATE SET
			mood = EXCLUDED.mood,
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.UserID, entry.Date.String(), entry.Mood, entry.Note, entry.UpdatedAt)
	if err != nil {
		s.logger.Error("failed to upsert mood entry",
			slog.String("user_id", entry.UserID.String()),
			slog.String("date", entry.Date.String()),
			slog.String("error", err.Error()))
		return storeError("mood", "upsert", "failed to write mood entry", err)
	}
	return nil
}

// ListByUser implements store.MoodStore.ListByUser
func (s *PostgresMoodStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.MoodEntry, error) {
	query := `
		SELECT entry_date, mood, note, updated_at FROM mood_entries
		WHERE user_id = $1
		ORDER BY entry_date DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeError("mood", "list", "failed to query mood entries", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.MoodEntry, 0)
	for rows.Next() {
		var (
			entry domain.MoodEntry
			date  time.Time
		)
		if err := rows.Scan(&date, &entry.Mood, &entry.Note, &entry.UpdatedAt); err != nil {
			return nil, storeError("mood", "list", "failed to scan mood entry", err)
		}
		entry.UserID = userID
		entry.Date = domain.DayOf(date, time.UTC)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("mood", "list", "failed to iterate mood entries", err)
	}
	return entries, nil
}
