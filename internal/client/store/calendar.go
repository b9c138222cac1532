package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inhabitapp/inhabit/internal/models"
	"github.com/inhabitapp/inhabit/internal/stats"
)

// Calendar aggregates completion records across all habits over a date
// range, for month and range views.
type Calendar struct {
	api API
	log *zap.Logger

	mu sync.Mutex
	// byDate maps a calendar date to one entry per habit.
	byDate map[string][]models.CalendarEntry
}

// NewCalendar builds an empty Calendar over the given API client.
func NewCalendar(apiClient API, log *zap.Logger) *Calendar {
	return &Calendar{
		api:    apiClient,
		log:    log,
		byDate: make(map[string][]models.CalendarEntry),
	}
}

// FetchRange loads completions for every habit over [start, end] and
// rebuilds the aggregation. A habit whose fetch fails is logged and
// skipped so one bad habit does not empty the whole calendar.
func (c *Calendar) FetchRange(ctx context.Context, habits []models.Habit, start, end time.Time) error {
	startDate := start.Format(models.DateFormat)
	endDate := end.Format(models.DateFormat)

	byDate := make(map[string][]models.CalendarEntry)
	for i := range habits {
		h := &habits[i]
		completions, err := c.api.GetCompletions(ctx, h.ID, startDate, endDate)
		if err != nil {
			c.log.Warn("skipping habit in calendar fetch",
				zap.String("habit_id", h.ID), zap.Error(err))
			continue
		}
		for _, comp := range completions {
			byDate[comp.CompletionDate] = append(byDate[comp.CompletionDate], models.CalendarEntry{
				HabitID:    h.ID,
				HabitTitle: h.Title,
				Completed:  comp.Completed,
			})
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byDate = byDate
	return nil
}

// LoadLocal rebuilds the aggregation from habits' in-memory completion
// records, for demo mode where there is no service to fetch from.
func (c *Calendar) LoadLocal(habits []models.Habit, start, end time.Time) {
	startDate := start.Format(models.DateFormat)
	endDate := end.Format(models.DateFormat)

	byDate := make(map[string][]models.CalendarEntry)
	for i := range habits {
		h := &habits[i]
		for _, comp := range h.RecentCompletions {
			if comp.CompletionDate < startDate || comp.CompletionDate > endDate {
				continue
			}
			byDate[comp.CompletionDate] = append(byDate[comp.CompletionDate], models.CalendarEntry{
				HabitID:    h.ID,
				HabitTitle: h.Title,
				Completed:  comp.Completed,
			})
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byDate = byDate
}

// DateCompletions returns the entries recorded for one calendar date.
func (c *Calendar) DateCompletions(date string) []models.CalendarEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.byDate[date]
	out := make([]models.CalendarEntry, len(entries))
	copy(out, entries)
	return out
}

// StatsForDate summarizes one date against the given habit count.
func (c *Calendar) StatsForDate(date string, totalHabits int) models.DateStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	completed := 0
	for _, e := range c.byDate[date] {
		if e.Completed {
			completed++
		}
	}
	return stats.StatsFor(totalHabits, completed)
}

// ToggleForDate updates the aggregation after a toggle settles,
// keeping at most one entry per habit per date.
func (c *Calendar) ToggleForDate(date string, habit *models.Habit, completed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.byDate[date]
	for i := range entries {
		if entries[i].HabitID == habit.ID {
			entries[i].Completed = completed
			return
		}
	}
	c.byDate[date] = append(entries, models.CalendarEntry{
		HabitID:    habit.ID,
		HabitTitle: habit.Title,
		Completed:  completed,
	})
}
