package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCompletionStore_Record(t *testing.T) {
	userID, habitID := uuid.New(), uuid.New()
	day := domain.Day("2024-01-05")

	testCases := []struct {
		name     string
		execErr  error
		expected error
	}{
		{name: "recorded"},
		{
			name:     "duplicate day",
			execErr:  &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "habit_completions_habit_day_key"},
			expected: store.ErrCompletionExists,
		},
		{
			name:     "habit deleted",
			execErr:  &pgconn.PgError{Code: foreignKeyViolationCode},
			expected: store.ErrHabitNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			s := NewPostgresCompletionStore(db, discardLogger())

			exp := mock.ExpectExec("INSERT INTO habit_completions").WithArgs(habitID, userID, "2024-01-05")
			if tc.execErr != nil {
				exp.WillReturnError(tc.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := s.Record(context.Background(), userID, habitID, day)
			if tc.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.expected)
			}
		})
	}
}

func TestPostgresCompletionStore_Remove(t *testing.T) {
	userID, habitID := uuid.New(), uuid.New()

	db, mock := newMockDB(t)
	s := NewPostgresCompletionStore(db, discardLogger())

	mock.ExpectExec("DELETE FROM habit_completions").
		WithArgs(habitID, userID, "2024-01-05").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM habit_completions").
		WithArgs(habitID, userID, "2024-01-06").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.Remove(context.Background(), userID, habitID, "2024-01-05"))
	assert.ErrorIs(t, s.Remove(context.Background(), userID, habitID, "2024-01-06"), store.ErrCompletionNotFound)
}

func TestPostgresCompletionStore_Exists(t *testing.T) {
	userID, habitID := uuid.New(), uuid.New()

	db, mock := newMockDB(t)
	s := NewPostgresCompletionStore(db, discardLogger())

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(habitID, userID, "2024-01-05").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.Exists(context.Background(), userID, habitID, "2024-01-05")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostgresCompletionStore_ListByUser(t *testing.T) {
	userID := uuid.New()
	a, b := uuid.New(), uuid.New()
	day := func(s string) time.Time {
		d, err := time.Parse(domain.DayLayout, s)
		require.NoError(t, err)
		return d
	}

	db, mock := newMockDB(t)
	s := NewPostgresCompletionStore(db, discardLogger())

	mock.ExpectQuery("SELECT habit_id, completed_date FROM habit_completions").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"habit_id", "completed_date"}).
			AddRow(a.String(), day("2024-01-04")).
			AddRow(a.String(), day("2024-01-05")).
			AddRow(b.String(), day("2024-01-03")))

	ledger, err := s.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Day{"2024-01-04", "2024-01-05"}, ledger[a])
	assert.Equal(t, []domain.Day{"2024-01-03"}, ledger[b])
}

func TestPostgresCompletionStore_ListByHabit(t *testing.T) {
	userID, habitID := uuid.New(), uuid.New()

	db, mock := newMockDB(t)
	s := NewPostgresCompletionStore(db, discardLogger())

	mock.ExpectQuery("SELECT completed_date FROM habit_completions").
		WithArgs(habitID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"completed_date"}))

	days, err := s.ListByHabit(context.Background(), userID, habitID)
	require.NoError(t, err)
	assert.Empty(t, days)
	assert.NotNil(t, days)
}
