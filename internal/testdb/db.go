//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/habit-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 10 * time.Second

var migrateOnce sync.Once

// GetTestDatabaseURL returns the database URL for tests.
// It checks HABIT_TEST_DB_URL and DATABASE_URL in that order.
func GetTestDatabaseURL() string {
	if url := os.Getenv("HABIT_TEST_DB_URL"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// GetTestDB opens a connection to the test database, applies the embedded
// migrations once per test binary, and closes the pool when t finishes.
// The test is skipped when no database URL is configured.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("HABIT_TEST_DB_URL or DATABASE_URL not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, url, 5)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	var migrateErr error
	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(ctx, db, "up", nil)
	})
	require.NoError(t, migrateErr, "failed to apply migrations")

	return db
}

// WithTx executes a test function within a transaction, automatically rolling back
// after the test completes. This ensures test isolation and prevents side effects.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		err := tx.Rollback()
		// sql.ErrTxDone is expected if tx is already committed or rolled back
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}
