package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inhabitapp/inhabit/internal/middleware"
	"github.com/inhabitapp/inhabit/internal/models"
	"github.com/inhabitapp/inhabit/internal/service"
)

// HabitService defines the habit operations required by the HTTP
// handlers.
type HabitService interface {
	List(ctx context.Context, userID string, opts service.ListOptions) ([]models.Habit, error)
	Get(ctx context.Context, userID, id string) (*models.Habit, error)
	Create(ctx context.Context, userID string, input service.CreateInput) (*models.Habit, error)
	Update(ctx context.Context, userID, id string, patch service.UpdateInput) (*models.Habit, error)
	SetArchived(ctx context.Context, userID, id string, archived bool) (*models.Habit, error)
	Delete(ctx context.Context, userID, id string) error
	Toggle(ctx context.Context, userID, id, date string, completed bool) (*models.Habit, error)
	Completions(ctx context.Context, userID, id, start, end string) ([]models.Completion, error)
	Categories(ctx context.Context, userID string) ([]string, error)
}

// HabitsHandler handles the /api/habits endpoints.
type HabitsHandler struct {
	// HabitService performs the underlying habit operations.
	HabitService HabitService
}

// ToggleRequest is the JSON payload for a completion toggle.
type ToggleRequest struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// ArchiveRequest is the JSON payload for the archive toggle.
type ArchiveRequest struct {
	IsArchived bool `json:"is_archived"`
}

func requestUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return user, true
}

func writeHabitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyTitle), errors.Is(err, service.ErrBadDate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// List returns the user's habits with recent completions,
// honoring days/category/sort_by/sort_order/include_archived query
// parameters.
func (h *HabitsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	days, _ := strconv.Atoi(q.Get("days"))
	includeArchived, _ := strconv.ParseBool(q.Get("include_archived"))

	habits, err := h.HabitService.List(r.Context(), user.ID, service.ListOptions{
		Days:            days,
		Category:        q.Get("category"),
		SortBy:          q.Get("sort_by"),
		SortOrder:       q.Get("sort_order"),
		IncludeArchived: includeArchived,
	})
	if err != nil {
		writeHabitError(w, err)
		return
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"habits": habits})
}

// Get returns a single habit.
func (h *HabitsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	habit, err := h.HabitService.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeHabitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"habit": habit})
}

// Create validates and stores a new habit.
func (h *HabitsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	var input service.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	habit, err := h.HabitService.Create(r.Context(), user.ID, input)
	if err != nil {
		writeHabitError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"habit": habit})
}

// Update applies a partial patch to a habit.
func (h *HabitsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	var patch service.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	habit, err := h.HabitService.Update(r.Context(), user.ID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeHabitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"habit": habit})
}

// Delete removes a habit.
func (h *HabitsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	if err := h.HabitService.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeHabitError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle records a completion state for a date and returns the habit
// with server-recomputed streaks.
func (h *HabitsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	habit, err := h.HabitService.Toggle(r.Context(), user.ID, chi.URLParam(r, "id"), req.Date, req.Completed)
	if err != nil {
		writeHabitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"habit": habit})
}

// Archive flips the archived flag.
func (h *HabitsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	var req ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	habit, err := h.HabitService.SetArchived(r.Context(), user.ID, chi.URLParam(r, "id"), req.IsArchived)
	if err != nil {
		writeHabitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"habit": habit})
}

// Completions returns a habit's completion records within the
// start_date/end_date query range.
func (h *HabitsHandler) Completions(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	completions, err := h.HabitService.Completions(
		r.Context(), user.ID, chi.URLParam(r, "id"),
		q.Get("start_date"), q.Get("end_date"),
	)
	if err != nil {
		writeHabitError(w, err)
		return
	}
	if completions == nil {
		completions = []models.Completion{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"completions": completions})
}

// Categories returns the user's distinct habit categories.
func (h *HabitsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	categories, err := h.HabitService.Categories(r.Context(), user.ID)
	if err != nil {
		writeHabitError(w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}
