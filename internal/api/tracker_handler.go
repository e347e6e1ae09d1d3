package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/habit-api/internal/api/shared"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/platform/logger"
	"github.com/phrazzld/habit-api/internal/redact"
	"github.com/phrazzld/habit-api/internal/service/tracker"
)

// TrackerHandler serves the habit ledger endpoints. Every successful
// mutation responds with the snapshot reloaded from the store.
type TrackerHandler struct {
	tracker tracker.Service
	logger  *slog.Logger
}

// NewTrackerHandler creates a new TrackerHandler.
func NewTrackerHandler(svc tracker.Service, logger *slog.Logger) *TrackerHandler {
	if svc == nil {
		panic("tracker service cannot be nil for TrackerHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for TrackerHandler")
	}
	return &TrackerHandler{
		tracker: svc,
		logger:  logger.With(slog.String("component", "tracker_handler")),
	}
}

// Routes registers the handler's endpoints on r.
func (h *TrackerHandler) Routes(r chi.Router) {
	r.Get("/snapshot", h.GetSnapshot)

	r.Post("/habits", h.CreateHabit)
	r.Put("/habits/{id}", h.UpdateHabit)
	r.Delete("/habits/{id}", h.DeleteHabit)
	r.Post("/habits/{id}/toggle", h.ToggleCompletion)

	r.Patch("/stats", h.UpdateStats)
	r.Post("/stats/recompute", h.RecomputeStats)

	r.Put("/moods/{date}", h.SaveMood)
	r.Post("/purchases", h.Purchase)
}

// GetSnapshot handles GET /api/snapshot requests.
func (h *TrackerHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	snap, err := h.tracker.LoadAll(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load data")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// CreateHabit handles POST /api/habits requests.
func (h *TrackerHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateHabitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	habit, snap, err := h.tracker.SaveHabit(r.Context(), userID, tracker.HabitInput{
		Name:        req.Name,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create habit")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, HabitResponse{Habit: habit, Snapshot: snap})
}

// UpdateHabit handles PUT /api/habits/{id} requests.
func (h *TrackerHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	userID, habitID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateHabitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	snap, err := h.tracker.UpdateHabit(r.Context(), userID, habitID, req.Changes())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update habit")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// DeleteHabit handles DELETE /api/habits/{id} requests.
func (h *TrackerHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	userID, habitID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	snap, err := h.tracker.DeleteHabit(r.Context(), userID, habitID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete habit")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// ToggleCompletion handles POST /api/habits/{id}/toggle requests.
// The body is optional; without a date the completion is toggled for today.
func (h *TrackerHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, habitID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ToggleCompletionRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.tracker.ToggleCompletion(r.Context(), userID, habitID, domain.Day(req.Date))
	if errors.Is(err, tracker.ErrSnapshotReload) && result != nil {
		log.Warn("completion toggled but snapshot reload failed",
			slog.String("habit_id", habitID.String()),
			redact.ErrorAttr(err))
		shared.RespondWithJSON(w, r, http.StatusOK, result)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to toggle completion")
		return
	}

	log.Debug("completion toggled",
		slog.String("habit_id", habitID.String()),
		slog.String("date", result.Date.String()),
		slog.Bool("completed", result.Completed))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// UpdateStats handles PATCH /api/stats requests.
func (h *TrackerHandler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UpdateStatsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	snap, err := h.tracker.UpdateUserStats(r.Context(), userID, req.Update())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update stats")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// RecomputeStats handles POST /api/stats/recompute requests.
// With ?dry_run=true the drift is reported but nothing is written.
func (h *TrackerHandler) RecomputeStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	dryRun := false
	if v := r.URL.Query().Get("dry_run"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("dry_run", "must be a boolean", domain.ErrInvalidFormat), "")
			return
		}
		dryRun = parsed
	}

	report, err := h.tracker.RecomputeStats(r.Context(), userID, !dryRun)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to recompute stats")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// SaveMood handles PUT /api/moods/{date} requests.
func (h *TrackerHandler) SaveMood(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	day, err := domain.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SaveMoodRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	snap, err := h.tracker.SaveMoodEntry(r.Context(), userID, tracker.MoodInput{
		Date: day,
		Mood: req.Mood,
		Note: req.Note,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save mood entry")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// Purchase handles POST /api/purchases requests.
func (h *TrackerHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req PurchaseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	snap, err := h.tracker.PurchaseItem(r.Context(), userID, req.ItemID, req.Price)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to purchase item")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, snap)
}
