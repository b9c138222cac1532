// Package store keeps the client's in-memory habit state and applies
// user actions optimistically: the local copy changes first, the habit
// service is told second, and the local change is either confirmed with
// the service's answer or rolled back to the exact prior state.
//
// Every operation also works without the service. An unauthenticated
// session (or an unreachable service) puts the store in demo mode with
// seeded sample habits, and authenticated writes that fail over the
// network fall back to local-only equivalents so the user never loses
// an action.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inhabitapp/inhabit/internal/client/api"
	"github.com/inhabitapp/inhabit/internal/client/sample"
	"github.com/inhabitapp/inhabit/internal/client/session"
	"github.com/inhabitapp/inhabit/internal/models"
	"github.com/inhabitapp/inhabit/internal/service"
	"github.com/inhabitapp/inhabit/internal/stats"
)

// API is the slice of the habit service client the store depends on.
type API interface {
	GetHabits(ctx context.Context, params api.ListParams) ([]models.Habit, error)
	CreateHabit(ctx context.Context, input service.CreateInput) (*models.Habit, error)
	UpdateHabit(ctx context.Context, id string, patch service.UpdateInput) (*models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
	SetArchived(ctx context.Context, id string, archived bool) (*models.Habit, error)
	ToggleCompletion(ctx context.Context, id, date string, completed bool) (*models.Habit, error)
	GetCompletions(ctx context.Context, id, start, end string) ([]models.Completion, error)
	GetCategories(ctx context.Context) ([]string, error)
}

// defaultCategories backs Categories when the service is unavailable.
var defaultCategories = []string{"Health", "Learning", "Personal", "Work"}

// Store holds the client's habits and mediates all mutations.
type Store struct {
	api     API
	session *session.Session
	log     *zap.Logger

	sampleSeed int64
	now        func() time.Time

	mu       sync.Mutex
	habits   []models.Habit
	demo     bool
	inflight map[string]bool
}

// New builds a Store over the given API client and session. sampleSeed
// fixes the demo dataset.
func New(apiClient API, sess *session.Session, log *zap.Logger, sampleSeed int64) *Store {
	return &Store{
		api:        apiClient,
		session:    sess,
		log:        log,
		sampleSeed: sampleSeed,
		now:        time.Now,
		inflight:   make(map[string]bool),
	}
}

// Load populates the store. With no credential it goes straight to the
// demo dataset; with one it fetches from the service and degrades to
// the demo dataset if the fetch fails.
func (s *Store) Load(ctx context.Context) error {
	if !s.session.Authenticated() {
		s.loadSample()
		return nil
	}

	habits, err := s.api.GetHabits(ctx, api.ListParams{})
	if err != nil {
		s.log.Warn("habit fetch failed, entering demo mode", zap.Error(err))
		s.loadSample()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = habits
	s.demo = false
	return nil
}

func (s *Store) loadSample() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = sample.Habits(s.sampleSeed, s.now())
	s.demo = true
}

// Demo reports whether the store is serving the sample dataset.
func (s *Store) Demo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.demo
}

// ListOptions filters and orders the habits returned by List.
type ListOptions struct {
	Category        string
	SortBy          string
	SortOrder       string
	IncludeArchived bool
}

// List returns a filtered, sorted copy of the habits. The returned
// slice is independent of the store's state.
func (s *Store) List(opts ListOptions) []models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Habit, 0, len(s.habits))
	for i := range s.habits {
		h := s.habits[i]
		if h.IsArchived && !opts.IncludeArchived {
			continue
		}
		if opts.Category != "" && h.Category != opts.Category {
			continue
		}
		out = append(out, cloneHabit(h))
	}
	sortHabits(out, opts.SortBy, opts.SortOrder)
	return out
}

// Get returns a copy of one habit.
func (s *Store) Get(id string) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrHabitNotFound
	}
	h := cloneHabit(s.habits[i])
	return &h, nil
}

// Create adds a habit. An empty title is rejected locally without a
// network call. When the service cannot persist the habit, a local
// copy with a generated id is kept so the action is not lost.
func (s *Store) Create(ctx context.Context, input service.CreateInput) (*models.Habit, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "title must not be empty"}
	}
	input.Title = strings.TrimSpace(input.Title)

	var created *models.Habit
	if !s.Demo() {
		var err error
		created, err = s.api.CreateHabit(ctx, input)
		if err != nil {
			s.log.Warn("create failed on service, keeping local copy", zap.Error(err))
		}
	}
	if created == nil {
		created = &models.Habit{
			ID:          uuid.NewString(),
			Title:       input.Title,
			Description: input.Description,
			Category:    input.Category,
			CreatedAt:   s.now(),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = append(s.habits, cloneHabit(*created))
	return created, nil
}

// Update patches a habit. A failed service call still applies the
// patch locally.
func (s *Store) Update(ctx context.Context, id string, patch service.UpdateInput) (*models.Habit, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "title must not be empty"}
	}

	s.mu.Lock()
	i := s.indexOf(id)
	s.mu.Unlock()
	if i < 0 {
		return nil, ErrHabitNotFound
	}

	var updated *models.Habit
	if !s.Demo() {
		var err error
		updated, err = s.api.UpdateHabit(ctx, id, patch)
		if err != nil {
			s.log.Warn("update failed on service, patching locally", zap.Error(err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i = s.indexOf(id)
	if i < 0 {
		return nil, ErrHabitNotFound
	}
	if updated != nil {
		s.habits[i] = cloneHabit(*updated)
	} else {
		applyPatch(&s.habits[i], patch)
	}
	h := cloneHabit(s.habits[i])
	return &h, nil
}

// Remove deletes a habit. The local copy always goes away, even when
// the service call fails.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	s.mu.Unlock()
	if i < 0 {
		return ErrHabitNotFound
	}

	if !s.Demo() {
		if err := s.api.DeleteHabit(ctx, id); err != nil {
			s.log.Warn("delete failed on service, removing locally", zap.Error(err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i = s.indexOf(id)
	if i >= 0 {
		s.habits = append(s.habits[:i], s.habits[i+1:]...)
	}
	return nil
}

// SetArchived flips a habit's archived flag. A failed service call
// still applies the flag locally.
func (s *Store) SetArchived(ctx context.Context, id string, archived bool) (*models.Habit, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	s.mu.Unlock()
	if i < 0 {
		return nil, ErrHabitNotFound
	}

	var updated *models.Habit
	if !s.Demo() {
		var err error
		updated, err = s.api.SetArchived(ctx, id, archived)
		if err != nil {
			s.log.Warn("archive failed on service, flagging locally", zap.Error(err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i = s.indexOf(id)
	if i < 0 {
		return nil, ErrHabitNotFound
	}
	if updated != nil {
		s.habits[i] = cloneHabit(*updated)
	} else {
		s.habits[i].IsArchived = archived
	}
	h := cloneHabit(s.habits[i])
	return &h, nil
}

// ToggleCompletion flips a habit's completion state for the given date
// (today when date is empty). The flip is shown immediately with
// estimated streaks, then confirmed against the service's recomputed
// habit or rolled back to the exact prior state. Only one toggle per
// habit may be in flight at a time.
func (s *Store) ToggleCompletion(ctx context.Context, id, date string) (*models.Habit, error) {
	if date == "" {
		date = s.now().Format(models.DateFormat)
	} else if _, err := time.Parse(models.DateFormat, date); err != nil {
		return nil, &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, ErrHabitNotFound
	}
	if s.inflight[id] {
		s.mu.Unlock()
		return nil, ErrToggleInFlight
	}
	s.inflight[id] = true

	original := cloneHabit(s.habits[i])
	completed := !s.habits[i].CompletedOn(date)
	applyToggle(&s.habits[i], date, completed)

	if s.demo {
		// No service behind the demo dataset. The local recompute is
		// authoritative.
		s.habits[i].CurrentStreak, s.habits[i].LongestStreak =
			stats.ComputeStreaks(s.habits[i].RecentCompletions, s.now())
		h := cloneHabit(s.habits[i])
		delete(s.inflight, id)
		s.mu.Unlock()
		return &h, nil
	}

	s.habits[i].CurrentStreak, s.habits[i].LongestStreak =
		stats.EstimateStreakOnToggle(&original, completed)
	s.mu.Unlock()

	confirmed, err := s.api.ToggleCompletion(ctx, id, date, completed)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)

	i = s.indexOf(id)
	if i < 0 {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		s.habits[i] = original
		return nil, err
	}
	s.habits[i] = cloneHabit(*confirmed)
	h := cloneHabit(s.habits[i])
	return &h, nil
}

// Categories returns the known category labels, falling back to the
// default set when the service has none or cannot be reached.
func (s *Store) Categories(ctx context.Context) []string {
	if !s.Demo() {
		cats, err := s.api.GetCategories(ctx)
		if err != nil {
			s.log.Warn("category fetch failed, using defaults", zap.Error(err))
		} else if len(cats) > 0 {
			return cats
		}
	}
	out := make([]string, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id string) int {
	for i := range s.habits {
		if s.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneHabit(h models.Habit) models.Habit {
	c := h
	c.RecentCompletions = make([]models.Completion, len(h.RecentCompletions))
	copy(c.RecentCompletions, h.RecentCompletions)
	return c
}

func applyPatch(h *models.Habit, patch service.UpdateInput) {
	if patch.Title != nil {
		h.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		h.Description = *patch.Description
	}
	if patch.Category != nil {
		h.Category = *patch.Category
	}
}

// applyToggle records the new completion state for date, keeping at
// most one record per date.
func applyToggle(h *models.Habit, date string, completed bool) {
	for i := range h.RecentCompletions {
		if h.RecentCompletions[i].CompletionDate == date {
			h.RecentCompletions[i].Completed = completed
			return
		}
	}
	h.RecentCompletions = append(h.RecentCompletions, models.Completion{
		HabitID:        h.ID,
		CompletionDate: date,
		Completed:      completed,
	})
	sort.Slice(h.RecentCompletions, func(i, j int) bool {
		return h.RecentCompletions[i].CompletionDate < h.RecentCompletions[j].CompletionDate
	})
}

func sortHabits(habits []models.Habit, by, order string) {
	desc := order == "desc"
	sort.SliceStable(habits, func(i, j int) bool {
		var less bool
		switch by {
		case "current_streak":
			less = habits[i].CurrentStreak < habits[j].CurrentStreak
		case "created_at":
			less = habits[i].CreatedAt.Before(habits[j].CreatedAt)
		default:
			less = strings.ToLower(habits[i].Title) < strings.ToLower(habits[j].Title)
		}
		if desc {
			return !less
		}
		return less
	})
}
