package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/api/middleware"
	"github.com/phrazzld/habit-api/internal/api/shared"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/mocks"
	"github.com/phrazzld/habit-api/internal/service/tracker"
	"github.com/phrazzld/habit-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter mounts the handler behind the real auth middleware.
func newTestRouter(svc tracker.Service, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(testLogger()))
	authMW := middleware.NewAuthMiddleware(mocks.NewMockJWTServiceForUser(userID))
	r.Route("/api", func(r chi.Router) {
		r.Use(authMW.Authenticate)
		NewTrackerHandler(svc, testLogger()).Routes(r)
	})
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetSnapshot(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	svc := &mocks.MockTrackerService{
		LoadAllFn: func(_ context.Context, got uuid.UUID) (*tracker.Snapshot, error) {
			assert.Equal(t, userID, got)
			return &tracker.Snapshot{Today: "2024-01-05", Stats: domain.UserStats{Level: 1}}, nil
		},
	}

	rec := doRequest(t, newTestRouter(svc, userID), http.MethodGet, "/api/snapshot", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var snap tracker.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, domain.Day("2024-01-05"), snap.Today)
	assert.Equal(t, 1, snap.Stats.Level)
}

func TestRequiresAuthentication(t *testing.T) {
	t.Parallel()
	svc := &mocks.MockTrackerService{}
	h := newTestRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.Calls())
}

func TestCreateHabit(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		svc := &mocks.MockTrackerService{
			SaveHabitFn: func(_ context.Context, _ uuid.UUID, in tracker.HabitInput) (*domain.Habit, *tracker.Snapshot, error) {
				assert.Equal(t, "Read", in.Name)
				assert.Equal(t, domain.PriorityHigh, in.Priority)
				return &domain.Habit{ID: uuid.New(), Name: in.Name, CoinsPerCompletion: 30}, &tracker.Snapshot{}, nil
			},
		}
		rec := doRequest(t, newTestRouter(svc, userID), http.MethodPost, "/api/habits",
			`{"name":"Read","priority":"high"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp HabitResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 30, resp.Habit.CoinsPerCompletion)
	})

	badBodies := map[string]string{
		"invalid priority": `{"name":"Read","priority":"urgent"}`,
		"missing name":     `{"priority":"low"}`,
		"unknown field":    `{"name":"Read","priority":"low","coins_per_completion":999}`,
		"malformed":        `{"name":`,
		"empty":            ``,
	}
	for name, body := range badBodies {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			svc := &mocks.MockTrackerService{}
			rec := doRequest(t, newTestRouter(svc, userID), http.MethodPost, "/api/habits", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.Calls(), "invalid requests never reach the service")
		})
	}
}

func TestUpdateAndDeleteHabit(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	habitID := uuid.New()

	svc := &mocks.MockTrackerService{
		UpdateHabitFn: func(_ context.Context, _, id uuid.UUID, c domain.HabitChanges) (*tracker.Snapshot, error) {
			assert.Equal(t, habitID, id)
			require.NotNil(t, c.Priority)
			assert.Equal(t, domain.PriorityLow, *c.Priority)
			assert.Nil(t, c.Name)
			return &tracker.Snapshot{}, nil
		},
		DeleteHabitFn: func(_ context.Context, _, id uuid.UUID) (*tracker.Snapshot, error) {
			return nil, store.ErrHabitNotFound
		},
	}
	h := newTestRouter(svc, userID)

	rec := doRequest(t, h, http.MethodPut, "/api/habits/"+habitID.String(), `{"priority":"low"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, "/api/habits/"+habitID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Habit not found", decodeError(t, rec).Error)

	rec = doRequest(t, h, http.MethodDelete, "/api/habits/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleCompletion(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	habitID := uuid.New()

	var gotDay domain.Day
	svc := &mocks.MockTrackerService{
		ToggleCompletionFn: func(_ context.Context, _, id uuid.UUID, day domain.Day) (*tracker.ToggleResult, error) {
			gotDay = day
			switch day {
			case "2024-02-01":
				return nil, tracker.ErrFutureDate
			case "2024-01-01":
				err := store.NewStoreError("user_stats", "upsert", "failed", io.ErrUnexpectedEOF)
				return nil, tracker.NewServiceError("toggle completion", "failed to toggle completion", err)
			case "2024-01-02":
				partial := &tracker.ToggleResult{HabitID: id, Date: day, Completed: false}
				return partial, fmt.Errorf("%w: %w", tracker.ErrSnapshotReload, io.ErrUnexpectedEOF)
			}
			return &tracker.ToggleResult{HabitID: id, Date: "2024-01-05", Completed: true, Snapshot: &tracker.Snapshot{}}, nil
		},
	}
	h := newTestRouter(svc, userID)
	path := "/api/habits/" + habitID.String() + "/toggle"

	rec := doRequest(t, h, http.MethodPost, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Day(""), gotDay, "no body means today")

	var result tracker.ToggleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Completed)

	rec = doRequest(t, h, http.MethodPost, path, `{"date":"2024-01-04"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Day("2024-01-04"), gotDay)

	rec = doRequest(t, h, http.MethodPost, path, `{"date":"2024-02-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Date cannot be in the future", decodeError(t, rec).Error)

	rec = doRequest(t, h, http.MethodPost, path, `{"date":"2024-01-01"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Failed to toggle completion", body.Error)
	assert.NotEmpty(t, body.TraceID)

	rec = doRequest(t, h, http.MethodPost, path, `{"date":"2024-01-02"}`)
	require.Equal(t, http.StatusOK, rec.Code, "a committed toggle is reported even without a snapshot")
	var partial tracker.ToggleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &partial))
	assert.False(t, partial.Completed)
	assert.Equal(t, domain.Day("2024-01-02"), partial.Date)
	assert.Nil(t, partial.Snapshot)

	rec = doRequest(t, h, http.MethodPost, path, `{"date":"Jan 4"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsEndpoints(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	var applied []bool
	svc := &mocks.MockTrackerService{
		UpdateUserStatsFn: func(_ context.Context, _ uuid.UUID, u domain.StatsUpdate) (*tracker.Snapshot, error) {
			require.NotNil(t, u.TotalCoins)
			assert.Equal(t, 50, *u.TotalCoins)
			assert.Nil(t, u.Level)
			return &tracker.Snapshot{}, nil
		},
		RecomputeStatsFn: func(_ context.Context, _ uuid.UUID, apply bool) (*tracker.RecomputeReport, error) {
			applied = append(applied, apply)
			return &tracker.RecomputeReport{Drift: []string{"total_coins"}, Applied: apply}, nil
		},
	}
	h := newTestRouter(svc, userID)

	rec := doRequest(t, h, http.MethodPatch, "/api/stats", `{"total_coins":50}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodPatch, "/api/stats", `{"total_coins":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/stats/recompute?dry_run=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, h, http.MethodPost, "/api/stats/recompute", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, h, http.MethodPost, "/api/stats/recompute?dry_run=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, []bool{false, true}, applied)
}

func TestSaveMood(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	svc := &mocks.MockTrackerService{
		SaveMoodEntryFn: func(_ context.Context, _ uuid.UUID, in tracker.MoodInput) (*tracker.Snapshot, error) {
			assert.Equal(t, domain.Day("2024-01-05"), in.Date)
			assert.Equal(t, 4, in.Mood)
			return &tracker.Snapshot{}, nil
		},
	}
	h := newTestRouter(svc, userID)

	rec := doRequest(t, h, http.MethodPut, "/api/moods/2024-01-05", `{"mood":4,"note":"fine"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodPut, "/api/moods/yesterday", `{"mood":4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPut, "/api/moods/2024-01-05", `{"mood":7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchase(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	svc := &mocks.MockTrackerService{
		PurchaseItemFn: func(_ context.Context, _ uuid.UUID, itemID string, price int) (*tracker.Snapshot, error) {
			switch itemID {
			case "owned":
				return nil, store.ErrItemAlreadyOwned
			case "pricey":
				return nil, domain.ErrInsufficientCoins
			}
			return &tracker.Snapshot{}, nil
		},
	}
	h := newTestRouter(svc, userID)

	rec := doRequest(t, h, http.MethodPost, "/api/purchases", `{"item_id":"hat","price":50}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/purchases", `{"item_id":"owned","price":50}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Item already owned", decodeError(t, rec).Error)

	rec = doRequest(t, h, http.MethodPost, "/api/purchases", `{"item_id":"pricey","price":5000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient coins", decodeError(t, rec).Error)

	rec = doRequest(t, h, http.MethodPost, "/api/purchases", `{"item_id":"","price":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewTrackerHandlerPanicsOnNil(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewTrackerHandler(nil, testLogger()) })
	assert.Panics(t, func() { NewTrackerHandler(&mocks.MockTrackerService{}, nil) })
}
