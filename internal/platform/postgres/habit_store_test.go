package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var habitRowColumns = []string{
	"id", "user_id", "name", "description", "priority", "coins_per_completion", "created_at", "updated_at",
}

func TestPostgresHabitStore_Create(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresHabitStore(db, discardLogger())

	habit, err := domain.NewHabit(uuid.New(), "Read", "20 pages", domain.PriorityHigh)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO habits").
		WithArgs(habit.ID, habit.UserID, "Read", "20 pages", "high", 30, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.Create(context.Background(), habit))
}

func TestPostgresHabitStore_CreateInvalid(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewPostgresHabitStore(db, discardLogger())

	err := s.Create(context.Background(), &domain.Habit{ID: uuid.New(), UserID: uuid.New(), Priority: domain.PriorityLow})
	assert.True(t, domain.IsValidationError(err), "validation must fail before any query is issued")
}

func TestPostgresHabitStore_Get(t *testing.T) {
	userID, habitID := uuid.New(), uuid.New()
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresHabitStore(db, discardLogger())

		mock.ExpectQuery("SELECT .* FROM habits WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(habitID, userID).
			WillReturnRows(sqlmock.NewRows(habitRowColumns).
				AddRow(habitID.String(), userID.String(), "Walk", "", "medium", int64(20), now, now))

		habit, err := s.Get(context.Background(), userID, habitID)
		require.NoError(t, err)
		assert.Equal(t, habitID, habit.ID)
		assert.Equal(t, domain.PriorityMedium, habit.Priority)
		assert.Equal(t, 20, habit.CoinsPerCompletion)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresHabitStore(db, discardLogger())

		mock.ExpectQuery("SELECT .* FROM habits").WillReturnError(sql.ErrNoRows)

		_, err := s.Get(context.Background(), userID, habitID)
		assert.ErrorIs(t, err, store.ErrHabitNotFound)
	})

	t.Run("driver failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresHabitStore(db, discardLogger())

		mock.ExpectQuery("SELECT .* FROM habits").WillReturnError(errors.New("connection reset"))

		_, err := s.Get(context.Background(), userID, habitID)
		assert.True(t, store.IsPersistenceError(err))
		assert.False(t, store.IsNotFoundError(err))
	})
}

func TestPostgresHabitStore_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresHabitStore(db, discardLogger())
	userID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .* FROM habits WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(habitRowColumns).
			AddRow(uuid.NewString(), userID.String(), "B", "", "low", int64(10), now, now).
			AddRow(uuid.NewString(), userID.String(), "A", "", "high", int64(30), now.Add(-time.Hour), now))

	habits, err := s.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, habits, 2)
	assert.Equal(t, "B", habits[0].Name)
	assert.Equal(t, 30, habits[1].CoinsPerCompletion)
}

func TestPostgresHabitStore_UpdateAndDelete(t *testing.T) {
	habit, err := domain.NewHabit(uuid.New(), "Read", "", domain.PriorityLow)
	require.NoError(t, err)

	t.Run("update missing habit", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresHabitStore(db, discardLogger())

		mock.ExpectExec("UPDATE habits").
			WithArgs("Read", "", "low", sqlmock.AnyArg(), habit.ID, habit.UserID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(context.Background(), habit), store.ErrHabitNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresHabitStore(db, discardLogger())

		mock.ExpectExec("DELETE FROM habits WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(habit.ID, habit.UserID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Delete(context.Background(), habit.UserID, habit.ID))
	})

	t.Run("delete missing habit", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresHabitStore(db, discardLogger())

		mock.ExpectExec("DELETE FROM habits").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Delete(context.Background(), habit.UserID, habit.ID), store.ErrHabitNotFound)
	})
}

func TestNewPostgresHabitStorePanicsOnNilDB(t *testing.T) {
	assert.Panics(t, func() { NewPostgresHabitStore(nil, nil) })
}
