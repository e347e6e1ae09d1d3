package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestRepository_RunInTxCommits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db, discardLogger())
	userID, habitID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO habit_completions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RunInTx(context.Background(), func(ctx context.Context, s store.Stores) error {
		return s.Completions.Record(ctx, userID, habitID, "2024-01-05")
	})
	assert.NoError(t, err)
}

func TestRepository_RunInTxRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db, discardLogger())
	userID, habitID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO habit_completions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO user_stats").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.RunInTx(context.Background(), func(ctx context.Context, s store.Stores) error {
		if err := s.Completions.Record(ctx, userID, habitID, "2024-01-05"); err != nil {
			return err
		}
		return s.Stats.Upsert(ctx, domain.NewUserStats(userID))
	})
	assert.True(t, store.IsPersistenceError(err))
}

func TestRepository_StoresAreBound(t *testing.T) {
	db, _ := newMockDB(t)
	stores := NewRepository(db, nil).Stores()

	assert.NotNil(t, stores.Habits)
	assert.NotNil(t, stores.Completions)
	assert.NotNil(t, stores.Stats)
	assert.NotNil(t, stores.Moods)
	assert.NotNil(t, stores.Purchases)
}
