package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inhabitapp/inhabit/internal/models"
	"github.com/inhabitapp/inhabit/internal/stats"
)

// defaultHistoryDays bounds the recent completions attached to listed habits.
const defaultHistoryDays = 14

var (
	// ErrEmptyTitle is returned when creating or renaming a habit with no title.
	ErrEmptyTitle = errors.New("habit title must not be empty")
	// ErrHabitNotFound is returned when a habit id does not resolve for the user.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrBadDate is returned for completion dates not in YYYY-MM-DD form.
	ErrBadDate = errors.New("invalid completion date")
)

// HabitRepository defines the persistence operations needed by the HabitService.
type HabitRepository interface {
	// GetHabitsByUser retrieves the user's non-deleted habits.
	GetHabitsByUser(ctx context.Context, userID string, includeArchived bool) ([]models.Habit, error)
	// GetHabitByID fetches one habit, sql.ErrNoRows if absent.
	GetHabitByID(ctx context.Context, userID, id string) (*models.Habit, error)
	// CreateHabit inserts a new habit.
	CreateHabit(ctx context.Context, userID string, habit *models.Habit) error
	// UpdateHabit writes the mutable habit fields.
	UpdateHabit(ctx context.Context, userID string, habit *models.Habit) error
	// DeleteHabit soft-deletes a habit.
	DeleteHabit(ctx context.Context, userID, id string) error
	// UpdateStreaks persists recomputed streak counters.
	UpdateStreaks(ctx context.Context, habitID string, current, longest int) error
	// UpsertCompletion records a completion state, update-in-place on conflict.
	UpsertCompletion(ctx context.Context, habitID, date string, completed bool) error
	// GetCompletions fetches completions in [start, end]; empty bounds are open.
	GetCompletions(ctx context.Context, habitID, start, end string) ([]models.Completion, error)
	// GetCategories returns the user's distinct habit categories.
	GetCategories(ctx context.Context, userID string) ([]string, error)
}

// ListOptions control filtering and sorting of a habit listing.
type ListOptions struct {
	// Days is the trailing completion window to attach (default 14).
	Days int
	// Category filters to one category when non-empty.
	Category string
	// SortBy is one of title, created_at, current_streak.
	SortBy string
	// SortOrder is asc or desc.
	SortOrder string
	// IncludeArchived also returns archived habits.
	IncludeArchived bool
}

// CreateInput carries the fields for a new habit.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// UpdateInput is a partial habit patch; nil fields are left untouched.
type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	IsArchived  *bool   `json:"is_archived"`
}

// HabitService implements habit CRUD, completion toggling with streak
// recomputation, and calendar queries.
type HabitService struct {
	repo HabitRepository
	now  func() time.Time
}

// NewHabitService constructs a HabitService with the provided repository.
func NewHabitService(repo HabitRepository) *HabitService {
	return &HabitService{repo: repo, now: time.Now}
}

// List returns the user's habits with recent completions attached,
// filtered and sorted per opts.
func (s *HabitService) List(ctx context.Context, userID string, opts ListOptions) ([]models.Habit, error) {
	habits, err := s.repo.GetHabitsByUser(ctx, userID, opts.IncludeArchived)
	if err != nil {
		return nil, err
	}

	if opts.Category != "" {
		filtered := habits[:0]
		for _, h := range habits {
			if h.Category == opts.Category {
				filtered = append(filtered, h)
			}
		}
		habits = filtered
	}

	days := opts.Days
	if days <= 0 {
		days = defaultHistoryDays
	}
	since := s.now().AddDate(0, 0, -(days - 1)).Format(models.DateFormat)
	for i := range habits {
		completions, err := s.repo.GetCompletions(ctx, habits[i].ID, since, "")
		if err != nil {
			return nil, fmt.Errorf("completions for habit %s: %w", habits[i].ID, err)
		}
		habits[i].RecentCompletions = completions
	}

	sortHabits(habits, opts.SortBy, opts.SortOrder)
	return habits, nil
}

func sortHabits(habits []models.Habit, by, order string) {
	desc := strings.EqualFold(order, "desc")
	sort.SliceStable(habits, func(i, j int) bool {
		var less bool
		switch by {
		case "title":
			less = strings.ToLower(habits[i].Title) < strings.ToLower(habits[j].Title)
		case "current_streak":
			less = habits[i].CurrentStreak < habits[j].CurrentStreak
		default:
			less = habits[i].CreatedAt.Before(habits[j].CreatedAt)
		}
		if desc {
			return !less
		}
		return less
	})
}

// Get returns one habit with its recent completions.
func (s *HabitService) Get(ctx context.Context, userID, id string) (*models.Habit, error) {
	habit, err := s.repo.GetHabitByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}

	since := s.now().AddDate(0, 0, -(defaultHistoryDays - 1)).Format(models.DateFormat)
	completions, err := s.repo.GetCompletions(ctx, id, since, "")
	if err != nil {
		return nil, fmt.Errorf("completions for habit %s: %w", id, err)
	}
	habit.RecentCompletions = completions
	return habit, nil
}

// Create validates and persists a new habit.
func (s *HabitService) Create(ctx context.Context, userID string, input CreateInput) (*models.Habit, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrEmptyTitle
	}

	habit := &models.Habit{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    input.Category,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateHabit(ctx, userID, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// Update applies a partial patch to a habit and returns the result.
func (s *HabitService) Update(ctx context.Context, userID, id string, patch UpdateInput) (*models.Habit, error) {
	habit, err := s.repo.GetHabitByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, ErrEmptyTitle
		}
		habit.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		habit.Description = *patch.Description
	}
	if patch.Category != nil {
		habit.Category = *patch.Category
	}
	if patch.IsArchived != nil {
		habit.IsArchived = *patch.IsArchived
	}

	if err := s.repo.UpdateHabit(ctx, userID, habit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}
	return habit, nil
}

// SetArchived flips the archived flag on a habit.
func (s *HabitService) SetArchived(ctx context.Context, userID, id string, archived bool) (*models.Habit, error) {
	return s.Update(ctx, userID, id, UpdateInput{IsArchived: &archived})
}

// Delete soft-deletes a habit.
func (s *HabitService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteHabit(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrHabitNotFound
		}
		return err
	}
	return nil
}

// Toggle records a completion state for (habit, date), recomputes the
// streak counters from the full history, persists them, and returns the
// refreshed habit. The longest streak never drops below the current one.
func (s *HabitService) Toggle(ctx context.Context, userID, id, date string, completed bool) (*models.Habit, error) {
	if _, err := time.Parse(models.DateFormat, date); err != nil {
		return nil, ErrBadDate
	}

	if _, err := s.repo.GetHabitByID(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}

	if err := s.repo.UpsertCompletion(ctx, id, date, completed); err != nil {
		return nil, err
	}

	all, err := s.repo.GetCompletions(ctx, id, "", "")
	if err != nil {
		return nil, fmt.Errorf("completions for habit %s: %w", id, err)
	}

	current, longest := stats.ComputeStreaks(all, s.now())
	if err := s.repo.UpdateStreaks(ctx, id, current, longest); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, id)
}

// Completions returns a habit's completion records within [start, end].
func (s *HabitService) Completions(ctx context.Context, userID, id, start, end string) ([]models.Completion, error) {
	if _, err := s.repo.GetHabitByID(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}
	return s.repo.GetCompletions(ctx, id, start, end)
}

// Categories returns the user's distinct habit categories.
func (s *HabitService) Categories(ctx context.Context, userID string) ([]string, error) {
	return s.repo.GetCategories(ctx, userID)
}
