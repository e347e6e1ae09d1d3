// Package memory provides an in-process implementation of the store
// interfaces. It backs the development server and the service tests.
//
// Transactions work on a private copy of the data that replaces the
// committed state only when the transaction function succeeds, so a failed
// transaction leaves no trace. Transactions are serialized; reads outside a
// transaction see the last committed state.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
)

type habitRecord struct {
	habit domain.Habit
	days  map[domain.Day]struct{}
}

type moodKey struct {
	userID uuid.UUID
	day    domain.Day
}

type state struct {
	habits    map[uuid.UUID]*habitRecord
	stats     map[uuid.UUID]domain.UserStats
	moods     map[moodKey]domain.MoodEntry
	purchases map[uuid.UUID][]domain.Purchase
}

func newState() *state {
	return &state{
		habits:    make(map[uuid.UUID]*habitRecord),
		stats:     make(map[uuid.UUID]domain.UserStats),
		moods:     make(map[moodKey]domain.MoodEntry),
		purchases: make(map[uuid.UUID][]domain.Purchase),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, rec := range s.habits {
		days := make(map[domain.Day]struct{}, len(rec.days))
		for d := range rec.days {
			days[d] = struct{}{}
		}
		c.habits[id] = &habitRecord{habit: rec.habit, days: days}
	}
	for id, st := range s.stats {
		c.stats[id] = st
	}
	for k, m := range s.moods {
		c.moods[k] = m
	}
	for id, ps := range s.purchases {
		c.purchases[id] = append([]domain.Purchase(nil), ps...)
	}
	return c
}

// Store is an in-memory ledger store. The zero value is not usable; call New.
type Store struct {
	mu        sync.RWMutex // guards committed
	txMu      sync.Mutex   // serializes writers
	committed *state
	logger    *slog.Logger
}

var _ store.TxRunner = (*Store)(nil)

// New returns an empty Store.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		committed: newState(),
		logger:    logger.With(slog.String("component", "memory_store")),
	}
}

// Stores returns stores that read the committed state and apply each write
// atomically on its own.
func (s *Store) Stores() store.Stores {
	return bind(&committedView{db: s})
}

// RunInTx runs fn against a private copy of the data and publishes the copy
// only if fn returns nil. A panic in fn discards the copy and is re-raised.
func (s *Store) RunInTx(ctx context.Context, fn store.StoresTxFn) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrTransactionFailed, err)
	}

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(ctx, bind(&txView{st: work})); err != nil {
		s.logger.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

// view abstracts how a store reaches the data: the committed state outside
// a transaction, or the working copy inside one.
type view interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

type committedView struct {
	db *Store
}

func (v *committedView) read(fn func(st *state) error) error {
	v.db.mu.RLock()
	defer v.db.mu.RUnlock()
	return fn(v.db.committed)
}

// write applies fn to a copy so that an error part-way through cannot
// leave a half-applied change behind.
func (v *committedView) write(fn func(st *state) error) error {
	v.db.txMu.Lock()
	defer v.db.txMu.Unlock()

	v.db.mu.RLock()
	work := v.db.committed.clone()
	v.db.mu.RUnlock()

	if err := fn(work); err != nil {
		return err
	}

	v.db.mu.Lock()
	v.db.committed = work
	v.db.mu.Unlock()
	return nil
}

type txView struct {
	mu sync.Mutex
	st *state
}

func (v *txView) read(fn func(st *state) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return fn(v.st)
}

func (v *txView) write(fn func(st *state) error) error {
	return v.read(fn)
}

func bind(v view) store.Stores {
	return store.Stores{
		Habits:      &habitStore{v: v},
		Completions: &completionStore{v: v},
		Stats:       &statsStore{v: v},
		Moods:       &moodStore{v: v},
		Purchases:   &purchaseStore{v: v},
	}
}
