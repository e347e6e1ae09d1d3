package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/domain/progression"
	"github.com/phrazzld/habit-api/internal/domain/streak"
	"github.com/phrazzld/habit-api/internal/platform/logger"
	"github.com/phrazzld/habit-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	repo     store.TxRunner
	locks    *userLocks
	clock    func() time.Time
	location *time.Location
	recorder Recorder
	logger   *slog.Logger
}

// Option customizes a Service.
type Option func(*serviceImpl)

// WithClock sets the source of the current time.
func WithClock(clock func() time.Time) Option {
	return func(s *serviceImpl) {
		s.clock = clock
	}
}

// WithLocation sets the zone that decides which calendar day is today.
func WithLocation(loc *time.Location) Option {
	return func(s *serviceImpl) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *serviceImpl) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a tracker Service over repo.
func NewService(repo store.TxRunner, logger *slog.Logger, opts ...Option) Service {
	if repo == nil {
		panic("repo cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &serviceImpl{
		repo:     repo,
		locks:    newUserLocks(),
		clock:    time.Now,
		location: time.UTC,
		recorder: noopRecorder{},
		logger:   logger.With(slog.String("component", "tracker_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) today() domain.Day {
	return domain.DayOf(s.clock(), s.location)
}

// LoadAll implements Service.LoadAll.
func (s *serviceImpl) LoadAll(ctx context.Context, userID uuid.UUID) (snap *Snapshot, err error) {
	defer s.observe("load_all", time.Now(), &err)
	return s.load(ctx, userID)
}

func (s *serviceImpl) load(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	stores := s.repo.Stores()

	var (
		habits    []*domain.Habit
		ledger    map[uuid.UUID][]domain.Day
		stats     *domain.UserStats
		moods     []*domain.MoodEntry
		purchases []*domain.Purchase
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		habits, err = stores.Habits.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		ledger, err = stores.Completions.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		got, err := stores.Stats.Get(gctx, userID)
		if errors.Is(err, store.ErrUserStatsNotFound) {
			stats = domain.NewUserStats(userID)
			return nil
		}
		stats = got
		return err
	})
	g.Go(func() (err error) {
		moods, err = stores.Moods.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		purchases, err = stores.Purchases.ListByUser(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("failed to load snapshot",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return buildSnapshot(s.today(), habits, ledger, *stats, moods, purchases), nil
}

// SaveHabit implements Service.SaveHabit.
func (s *serviceImpl) SaveHabit(
	ctx context.Context,
	userID uuid.UUID,
	input HabitInput,
) (habit *domain.Habit, snap *Snapshot, err error) {
	defer s.observe("save_habit", time.Now(), &err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	habit, err = domain.NewHabit(userID, input.Name, input.Description, input.Priority)
	if err != nil {
		log.Debug("invalid habit", slog.String("error", err.Error()))
		return nil, nil, err
	}

	unlock := s.locks.lock(userID)
	err = s.repo.Stores().Habits.Create(ctx, habit)
	unlock()
	if err != nil {
		return nil, nil, s.wrap("save habit", "failed to create habit", err)
	}

	log.Info("habit created",
		slog.String("user_id", userID.String()),
		slog.String("habit_id", habit.ID.String()),
		slog.String("priority", string(habit.Priority)))

	snap, err = s.load(ctx, userID)
	return habit, snap, err
}

// UpdateHabit implements Service.UpdateHabit.
func (s *serviceImpl) UpdateHabit(
	ctx context.Context,
	userID, habitID uuid.UUID,
	changes domain.HabitChanges,
) (snap *Snapshot, err error) {
	defer s.observe("update_habit", time.Now(), &err)

	err = s.mutate(ctx, userID, func(ctx context.Context, st store.Stores) error {
		habit, err := st.Habits.Get(ctx, userID, habitID)
		if err != nil {
			return err
		}
		if err := habit.Apply(changes); err != nil {
			return err
		}
		return st.Habits.Update(ctx, habit)
	})
	if err != nil {
		return nil, s.wrap("update habit", "failed to update habit", err)
	}

	return s.load(ctx, userID)
}

// DeleteHabit implements Service.DeleteHabit.
func (s *serviceImpl) DeleteHabit(ctx context.Context, userID, habitID uuid.UUID) (snap *Snapshot, err error) {
	defer s.observe("delete_habit", time.Now(), &err)
	log := logger.FromContextOrDefault(ctx, s.logger)
	today := s.today()

	var removed int
	err = s.mutate(ctx, userID, func(ctx context.Context, st store.Stores) error {
		habit, err := st.Habits.Get(ctx, userID, habitID)
		if err != nil {
			return err
		}
		days, err := st.Completions.ListByHabit(ctx, userID, habitID)
		if err != nil {
			return err
		}
		stats, err := lockStats(ctx, st, userID)
		if err != nil {
			return err
		}

		if err := st.Habits.Delete(ctx, userID, habitID); err != nil {
			return err
		}
		removed = len(days)

		next, ok := progression.ReverseN(*stats, habit.CoinsPerCompletion, len(days))
		if !ok {
			log.Warn("stats inconsistent with ledger, recomputing",
				slog.String("user_id", userID.String()))
			next, err = recompute(ctx, st, userID, today)
			if err != nil {
				return err
			}
		}
		return s.persistStats(ctx, st, userID, next, today)
	})
	if err != nil {
		return nil, s.wrap("delete habit", "failed to delete habit", err)
	}

	log.Info("habit deleted",
		slog.String("user_id", userID.String()),
		slog.String("habit_id", habitID.String()),
		slog.Int("completions_removed", removed))

	return s.load(ctx, userID)
}

// ToggleCompletion implements Service.ToggleCompletion.
func (s *serviceImpl) ToggleCompletion(
	ctx context.Context,
	userID, habitID uuid.UUID,
	day domain.Day,
) (result *ToggleResult, err error) {
	defer s.observe("toggle_completion", time.Now(), &err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	today := s.today()
	if day == "" {
		day = today
	}
	if !day.Valid() {
		return nil, domain.NewValidationError("date", "must be a calendar day in YYYY-MM-DD form", domain.ErrInvalidFormat)
	}
	if today.Before(day) {
		return nil, ErrFutureDate
	}

	var completed bool
	err = s.mutate(ctx, userID, func(ctx context.Context, st store.Stores) error {
		habit, err := st.Habits.Get(ctx, userID, habitID)
		if err != nil {
			return err
		}
		stats, err := lockStats(ctx, st, userID)
		if err != nil {
			return err
		}

		// Membership is read inside the transaction so a retried request can
		// never apply the same reward twice.
		exists, err := st.Completions.Exists(ctx, userID, habitID, day)
		if err != nil {
			return err
		}

		var next domain.UserStats
		if exists {
			if err := st.Completions.Remove(ctx, userID, habitID, day); err != nil {
				return err
			}
			var ok bool
			next, ok = progression.Reverse(*stats, habit.CoinsPerCompletion)
			if !ok {
				log.Warn("stats inconsistent with ledger, recomputing",
					slog.String("user_id", userID.String()))
				if next, err = recompute(ctx, st, userID, today); err != nil {
					return err
				}
			}
		} else {
			if err := st.Completions.Record(ctx, userID, habitID, day); err != nil {
				return err
			}
			next = progression.Apply(*stats, habit.CoinsPerCompletion)
		}
		completed = !exists

		return s.persistStats(ctx, st, userID, next, today)
	})
	if err != nil {
		return nil, s.wrap("toggle completion", "failed to toggle completion", err)
	}

	s.recorder.ObserveToggle(completed)
	log.Info("completion toggled",
		slog.String("user_id", userID.String()),
		slog.String("habit_id", habitID.String()),
		slog.String("date", day.String()),
		slog.Bool("completed", completed))

	result = &ToggleResult{HabitID: habitID, Date: day, Completed: completed}
	snap, err := s.load(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrSnapshotReload, err)
	}
	result.Snapshot = snap
	return result, nil
}

// UpdateUserStats implements Service.UpdateUserStats.
func (s *serviceImpl) UpdateUserStats(
	ctx context.Context,
	userID uuid.UUID,
	update domain.StatsUpdate,
) (snap *Snapshot, err error) {
	defer s.observe("update_user_stats", time.Now(), &err)

	if update.IsEmpty() {
		return nil, ErrEmptyStatsUpdate
	}
	if err := validateStatsUpdate(update); err != nil {
		return nil, err
	}

	err = s.mutate(ctx, userID, func(ctx context.Context, st store.Stores) error {
		stats, err := lockStats(ctx, st, userID)
		if err != nil {
			return err
		}

		next := *stats
		if update.TotalCoins != nil {
			next.TotalCoins = *update.TotalCoins
		}
		if update.TotalHabitsCompleted != nil {
			next.TotalHabitsCompleted = *update.TotalHabitsCompleted
			next.Level = progression.Level(next.TotalHabitsCompleted)
		}
		if update.CurrentStreak != nil {
			next.CurrentStreak = *update.CurrentStreak
		}
		if update.Level != nil {
			if *update.Level != progression.Level(next.TotalHabitsCompleted) {
				return domain.NewValidationError("level", "does not match total_habits_completed", domain.ErrLevelMismatch)
			}
			next.Level = *update.Level
		}
		next.UpdatedAt = s.clock().UTC()

		return st.Stats.Upsert(ctx, &next)
	})
	if err != nil {
		return nil, s.wrap("update user stats", "failed to update stats", err)
	}

	return s.load(ctx, userID)
}

func validateStatsUpdate(u domain.StatsUpdate) error {
	fields := []struct {
		name  string
		value *int
	}{
		{"total_coins", u.TotalCoins},
		{"total_habits_completed", u.TotalHabitsCompleted},
		{"current_streak", u.CurrentStreak},
	}
	for _, f := range fields {
		if f.value != nil && *f.value < 0 {
			return domain.NewValidationError(f.name, "cannot be negative", domain.ErrNegativeStatValue)
		}
	}
	if u.Level != nil && *u.Level < 1 {
		return domain.NewValidationError("level", "must be at least 1", domain.ErrValidation)
	}
	return nil
}

// SaveMoodEntry implements Service.SaveMoodEntry.
func (s *serviceImpl) SaveMoodEntry(ctx context.Context, userID uuid.UUID, input MoodInput) (snap *Snapshot, err error) {
	defer s.observe("save_mood_entry", time.Now(), &err)

	entry, err := domain.NewMoodEntry(userID, input.Date, input.Mood, input.Note)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(userID)
	err = s.repo.Stores().Moods.Upsert(ctx, entry)
	unlock()
	if err != nil {
		return nil, s.wrap("save mood entry", "failed to save mood entry", err)
	}

	return s.load(ctx, userID)
}

// PurchaseItem implements Service.PurchaseItem.
func (s *serviceImpl) PurchaseItem(
	ctx context.Context,
	userID uuid.UUID,
	itemID string,
	price int,
) (snap *Snapshot, err error) {
	defer s.observe("purchase_item", time.Now(), &err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	purchase, err := domain.NewPurchase(userID, itemID, price)
	if err != nil {
		return nil, err
	}
	purchase.PurchasedAt = s.clock().UTC()

	err = s.mutate(ctx, userID, func(ctx context.Context, st store.Stores) error {
		stats, err := lockStats(ctx, st, userID)
		if err != nil {
			return err
		}
		// Ownership is checked first so a repeat purchase reports "owned"
		// regardless of the balance.
		if err := st.Purchases.Create(ctx, purchase); err != nil {
			return err
		}
		if stats.TotalCoins < price {
			return domain.ErrInsufficientCoins
		}

		next := *stats
		next.TotalCoins -= price
		next.UpdatedAt = s.clock().UTC()
		return st.Stats.Upsert(ctx, &next)
	})
	if err != nil {
		return nil, s.wrap("purchase item", "failed to purchase item", err)
	}

	log.Info("item purchased",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID),
		slog.Int("price", price))

	return s.load(ctx, userID)
}

// RecomputeStats implements Service.RecomputeStats.
func (s *serviceImpl) RecomputeStats(
	ctx context.Context,
	userID uuid.UUID,
	apply bool,
) (report *RecomputeReport, err error) {
	defer s.observe("recompute_stats", time.Now(), &err)
	log := logger.FromContextOrDefault(ctx, s.logger)
	today := s.today()

	report = &RecomputeReport{}
	err = s.mutate(ctx, userID, func(ctx context.Context, st store.Stores) error {
		stored, err := lockStats(ctx, st, userID)
		if err != nil {
			return err
		}
		derived, err := recompute(ctx, st, userID, today)
		if err != nil {
			return err
		}

		report.Stored = *stored
		report.Derived = derived
		report.Drift = progression.Drift(*stored, derived)
		if report.Drift == nil {
			report.Drift = []string{}
		}

		if !apply || len(report.Drift) == 0 {
			return nil
		}
		report.Applied = true
		return st.Stats.Upsert(ctx, &derived)
	})
	if err != nil {
		return nil, s.wrap("recompute stats", "failed to recompute stats", err)
	}

	if len(report.Drift) > 0 {
		s.recorder.ObserveDrift(report.Drift)
		log.Warn("stats drift detected",
			slog.String("user_id", userID.String()),
			slog.Any("fields", report.Drift),
			slog.Bool("applied", report.Applied))
	}

	report.Snapshot, err = s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// mutate runs fn in a transaction while holding the user's lock.
func (s *serviceImpl) mutate(ctx context.Context, userID uuid.UUID, fn store.StoresTxFn) error {
	unlock := s.locks.lock(userID)
	defer unlock()
	return s.repo.RunInTx(ctx, fn)
}

// persistStats sets the cross-habit streak from the ledger as it stands in
// the transaction and writes the row.
func (s *serviceImpl) persistStats(
	ctx context.Context,
	st store.Stores,
	userID uuid.UUID,
	next domain.UserStats,
	today domain.Day,
) error {
	ledger, err := st.Completions.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	next.UserID = userID
	next.CurrentStreak = streak.CrossHabit(ledger, today)
	next.UpdatedAt = s.clock().UTC()
	return st.Stats.Upsert(ctx, &next)
}

// lockStats reads the stats row for update, starting from level-1 stats for
// a user who has none yet.
func lockStats(ctx context.Context, st store.Stores, userID uuid.UUID) (*domain.UserStats, error) {
	stats, err := st.Stats.GetForUpdate(ctx, userID)
	if errors.Is(err, store.ErrUserStatsNotFound) {
		return domain.NewUserStats(userID), nil
	}
	return stats, err
}

// recompute rebuilds the user's stats from the ledger visible to st.
func recompute(ctx context.Context, st store.Stores, userID uuid.UUID, today domain.Day) (domain.UserStats, error) {
	habits, err := st.Habits.ListByUser(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}
	ledger, err := st.Completions.ListByUser(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}
	purchases, err := st.Purchases.ListByUser(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}
	return progression.Recompute(userID, habits, ledger, purchases, today), nil
}

// wrap passes expected conditions through unchanged and wraps everything
// else in a ServiceError.
func (s *serviceImpl) wrap(operation, message string, err error) error {
	if domain.IsValidationError(err) ||
		store.IsNotFoundError(err) ||
		store.IsDuplicateError(err) ||
		errors.Is(err, store.ErrInvalidEntity) {
		return err
	}
	s.logger.Error(message,
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	return NewServiceError(operation, message, err)
}

func (s *serviceImpl) observe(operation string, start time.Time, err *error) {
	s.recorder.ObserveOperation(operation, start, *err)
}
