package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhabitapp/inhabit/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse(models.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func completionsFor(habitID string, dates map[string]bool) []models.Completion {
	out := make([]models.Completion, 0, len(dates))
	for d, done := range dates {
		out = append(out, models.Completion{HabitID: habitID, CompletionDate: d, Completed: done})
	}
	return out
}

func TestBuildCompletionHistory_AlwaysFullWindow(t *testing.T) {
	ref := day("2024-03-10")
	habit := &models.Habit{
		ID: "h1",
		RecentCompletions: []models.Completion{
			{HabitID: "h1", CompletionDate: "2024-03-10", Completed: true},
			{HabitID: "h1", CompletionDate: "2024-03-08", Completed: true},
		},
	}

	history := BuildCompletionHistory(habit, ref, 14)
	require.Len(t, history, 14)

	assert.Equal(t, "2024-02-26", history[0].Date)
	assert.Equal(t, "2024-03-10", history[13].Date)
	assert.True(t, history[13].IsToday)
	assert.True(t, history[13].Completed)
	assert.True(t, history[11].Completed) // 03-08
	assert.False(t, history[12].Completed)
	for _, d := range history[:13] {
		assert.False(t, d.IsToday, "only the reference day is today, got %s", d.Date)
	}
}

func TestBuildCompletionHistory_EmptyWindow(t *testing.T) {
	habit := &models.Habit{ID: "h1"}
	assert.Empty(t, BuildCompletionHistory(habit, day("2024-03-10"), 0))
}

func TestCompletionRate(t *testing.T) {
	assert.Zero(t, CompletionRate(nil))
	assert.Zero(t, CompletionRate([]models.HistoryDay{}))

	history := []models.HistoryDay{
		{Date: "2024-03-08", Completed: true},
		{Date: "2024-03-09", Completed: false},
		{Date: "2024-03-10", Completed: true},
		{Date: "2024-03-11", Completed: true},
	}
	assert.InDelta(t, 75.0, CompletionRate(history), 0.001)
}

func TestEstimateStreakOnToggle(t *testing.T) {
	habit := &models.Habit{CurrentStreak: 5, LongestStreak: 5}

	current, longest := EstimateStreakOnToggle(habit, true)
	assert.Equal(t, 6, current)
	assert.Equal(t, 6, longest)

	// Un-completing is provisional: no local guess is made.
	current, longest = EstimateStreakOnToggle(habit, false)
	assert.Equal(t, 5, current)
	assert.Equal(t, 5, longest)
}

func TestComputeStreaks_RunEndingToday(t *testing.T) {
	completions := completionsFor("h1", map[string]bool{
		"2024-01-01": true,
		"2024-01-02": true,
		"2024-01-03": true,
	})

	current, longest := ComputeStreaks(completions, day("2024-01-03"))
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestComputeStreaks_ExplicitMissToday(t *testing.T) {
	// Completed Jan 1-3, explicitly not completed Jan 4, evaluated Jan 4.
	completions := completionsFor("h1", map[string]bool{
		"2024-01-01": true,
		"2024-01-02": true,
		"2024-01-03": true,
		"2024-01-04": false,
	})

	current, longest := ComputeStreaks(completions, day("2024-01-04"))
	assert.Equal(t, 0, current)
	assert.Equal(t, 3, longest)
}

func TestComputeStreaks_NoRecordTodayKeepsRun(t *testing.T) {
	// No record yet for the reference day: the run through yesterday counts.
	completions := completionsFor("h1", map[string]bool{
		"2024-01-01": true,
		"2024-01-02": true,
		"2024-01-03": true,
	})

	current, longest := ComputeStreaks(completions, day("2024-01-04"))
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestComputeStreaks_GapResets(t *testing.T) {
	completions := completionsFor("h1", map[string]bool{
		"2024-01-01": true,
		"2024-01-02": true,
		"2024-01-03": true,
		// gap on the 4th and 5th
		"2024-01-06": true,
	})

	current, longest := ComputeStreaks(completions, day("2024-01-06"))
	assert.Equal(t, 1, current)
	assert.Equal(t, 3, longest)
}

func TestComputeStreaks_LongestNeverBelowCurrent(t *testing.T) {
	dates := map[string]bool{}
	d := day("2024-02-01")
	for i := 0; i < 9; i++ {
		dates[d.AddDate(0, 0, i).Format(models.DateFormat)] = true
	}

	current, longest := ComputeStreaks(completionsFor("h1", dates), day("2024-02-09"))
	assert.Equal(t, 9, current)
	assert.GreaterOrEqual(t, longest, current)
}

func TestComputeStreaks_Empty(t *testing.T) {
	current, longest := ComputeStreaks(nil, day("2024-01-01"))
	assert.Zero(t, current)
	assert.Zero(t, longest)
}

func TestWeekSummary(t *testing.T) {
	ref := day("2024-03-10") // a Sunday
	habits := []models.Habit{
		{ID: "h1", RecentCompletions: []models.Completion{
			{HabitID: "h1", CompletionDate: "2024-03-10", Completed: true},
			{HabitID: "h1", CompletionDate: "2024-03-09", Completed: true},
		}},
		{ID: "h2", RecentCompletions: []models.Completion{
			{HabitID: "h2", CompletionDate: "2024-03-10", Completed: false},
		}},
	}

	week := WeekSummary(habits, ref)
	require.Len(t, week, 7)

	assert.Equal(t, "2024-03-04", week[0].Date)
	assert.Equal(t, "Mon", week[0].Day)
	assert.Equal(t, "2024-03-10", week[6].Date)
	assert.Equal(t, "Sun", week[6].Day)
	assert.True(t, week[6].IsToday)
	assert.Equal(t, 1, week[6].Completed)
	assert.Equal(t, 2, week[6].Total)
	assert.Equal(t, 1, week[5].Completed)
	assert.Equal(t, 0, week[4].Completed)
}

func TestStatsFor(t *testing.T) {
	s := StatsFor(0, 0)
	assert.Zero(t, s.CompletionRate)

	s = StatsFor(4, 3)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Completed)
	assert.InDelta(t, 75.0, s.CompletionRate, 0.001)
}
