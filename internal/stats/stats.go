// Package stats provides pure aggregation over habit completion
// records: rolling histories, completion rates, and streaks. Every
// function is stateless and recomputes from its inputs.
package stats

import (
	"time"

	"github.com/inhabitapp/inhabit/internal/models"
)

// BuildCompletionHistory returns exactly windowDays entries covering
// the calendar days ending at ref inclusive, oldest first. Days with
// no completed record default to Completed=false.
func BuildCompletionHistory(habit *models.Habit, ref time.Time, windowDays int) []models.HistoryDay {
	if windowDays <= 0 {
		return []models.HistoryDay{}
	}

	byDate := make(map[string]bool, len(habit.RecentCompletions))
	for _, c := range habit.RecentCompletions {
		byDate[c.CompletionDate] = c.Completed
	}

	history := make([]models.HistoryDay, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		day := ref.AddDate(0, 0, -i)
		date := day.Format(models.DateFormat)
		history = append(history, models.HistoryDay{
			Date:      date,
			Completed: byDate[date],
			IsToday:   i == 0,
		})
	}
	return history
}

// CompletionRate returns the percentage of completed days in the
// history window, 0 for an empty window.
func CompletionRate(history []models.HistoryDay) float64 {
	if len(history) == 0 {
		return 0
	}
	completed := 0
	for _, d := range history {
		if d.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(history)) * 100
}

// EstimateStreakOnToggle returns an optimistic (current, longest)
// estimate for display before the service responds. Marking complete
// bumps the current streak and lifts the longest to match; marking
// incomplete leaves both untouched since the true values require a
// full gap scan. The estimate is provisional either way and must be
// replaced by the service-recomputed streaks once they arrive.
func EstimateStreakOnToggle(habit *models.Habit, completed bool) (current, longest int) {
	current, longest = habit.CurrentStreak, habit.LongestStreak
	if completed {
		current++
		if current > longest {
			longest = current
		}
	}
	return current, longest
}

// ComputeStreaks derives the authoritative (current, longest) streaks
// from a habit's full completion records at the given reference date.
//
// The current streak is the consecutive run of completed days ending at
// ref, or at ref-1 when ref has no record yet. An explicit
// completed=false record on ref breaks the run. The longest streak is
// the maximum run anywhere in the records; the returned longest is
// never below the returned current.
func ComputeStreaks(completions []models.Completion, ref time.Time) (current, longest int) {
	byDate := make(map[string]bool, len(completions))
	for _, c := range completions {
		byDate[c.CompletionDate] = c.Completed
	}

	refDate := ref.Format(models.DateFormat)
	done, recorded := byDate[refDate]

	start := ref
	switch {
	case recorded && !done:
		current = 0
		start = time.Time{}
	case !recorded:
		start = ref.AddDate(0, 0, -1)
	}
	if !start.IsZero() {
		for day := start; byDate[day.Format(models.DateFormat)]; day = day.AddDate(0, 0, -1) {
			current++
		}
	}

	longest = longestRun(completions)
	if current > longest {
		longest = current
	}
	return current, longest
}

// longestRun finds the longest consecutive-day run of completed
// records anywhere in the set.
func longestRun(completions []models.Completion) int {
	byDate := make(map[string]bool, len(completions))
	for _, c := range completions {
		if c.Completed {
			byDate[c.CompletionDate] = true
		}
	}

	best := 0
	for date := range byDate {
		day, err := time.Parse(models.DateFormat, date)
		if err != nil {
			continue
		}
		// Only count runs from their first day.
		if byDate[day.AddDate(0, 0, -1).Format(models.DateFormat)] {
			continue
		}
		run := 0
		for d := day; byDate[d.Format(models.DateFormat)]; d = d.AddDate(0, 0, 1) {
			run++
		}
		if run > best {
			best = run
		}
	}
	return best
}

// WeekSummary rolls up the trailing 7 days ending at ref across all
// habits, oldest first.
func WeekSummary(habits []models.Habit, ref time.Time) []models.DaySummary {
	week := make([]models.DaySummary, 0, 7)
	for i := 6; i >= 0; i-- {
		day := ref.AddDate(0, 0, -i)
		date := day.Format(models.DateFormat)

		completed := 0
		for j := range habits {
			if habits[j].CompletedOn(date) {
				completed++
			}
		}
		week = append(week, models.DaySummary{
			Day:       day.Weekday().String()[:3],
			Date:      date,
			Completed: completed,
			Total:     len(habits),
			IsToday:   i == 0,
		})
	}
	return week
}

// StatsFor builds a DateStats from a completed count over a total,
// guarding the zero-total division.
func StatsFor(total, completed int) models.DateStats {
	s := models.DateStats{Total: total, Completed: completed}
	if total > 0 {
		s.CompletionRate = float64(completed) / float64(total) * 100
	}
	return s
}
