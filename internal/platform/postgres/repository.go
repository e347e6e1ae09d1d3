package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/habit-api/internal/store"
)

// Repository vends PostgreSQL-backed stores, either bound to the pool or to
// a single transaction.
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.TxRunner = (*Repository)(nil)

// NewRepository creates a Repository over an open connection pool.
func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// Stores returns stores bound to the connection pool.
func (r *Repository) Stores() store.Stores {
	return r.bind(r.db)
}

// RunInTx runs fn against stores bound to one transaction.
func (r *Repository) RunInTx(ctx context.Context, fn store.StoresTxFn) error {
	return store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, r.bind(tx))
	})
}

func (r *Repository) bind(db store.DBTX) store.Stores {
	return store.Stores{
		Habits:      NewPostgresHabitStore(db, r.logger),
		Completions: NewPostgresCompletionStore(db, r.logger),
		Stats:       NewPostgresUserStatsStore(db, r.logger),
		Moods:       NewPostgresMoodStore(db, r.logger),
		Purchases:   NewPostgresPurchaseStore(db, r.logger),
	}
}

// Open opens a pgx-backed connection pool and verifies it with a ping.
func Open(ctx context.Context, url string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
