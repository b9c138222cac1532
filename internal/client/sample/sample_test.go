package sample

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhabitapp/inhabit/internal/models"
)

func TestHabits_Deterministic(t *testing.T) {
	ref := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	first := Habits(42, ref)
	second := Habits(42, ref)
	require.True(t, reflect.DeepEqual(first, second), "same seed must yield identical habits")

	other := Habits(43, ref)
	same := true
	for i := range first {
		if !reflect.DeepEqual(first[i].RecentCompletions, other[i].RecentCompletions) {
			same = false
		}
	}
	assert.False(t, same, "different seeds should yield different completion histories")
}

func TestHabits_Shape(t *testing.T) {
	ref := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	habits := Habits(1, ref)

	require.Len(t, habits, 3)
	assert.Equal(t, "Morning Meditation", habits[0].Title)
	assert.Equal(t, "Read for 30 Minutes", habits[1].Title)
	assert.Equal(t, "Exercise", habits[2].Title)

	for _, h := range habits {
		assert.Len(t, h.RecentCompletions, 14)
		assert.Equal(t, "2024-02-25", h.RecentCompletions[0].CompletionDate)
		assert.Equal(t, "2024-03-10", h.RecentCompletions[13].CompletionDate)
		assert.GreaterOrEqual(t, h.LongestStreak, h.CurrentStreak)
		for _, c := range h.RecentCompletions {
			assert.Equal(t, h.ID, c.HabitID)
			_, err := time.Parse(models.DateFormat, c.CompletionDate)
			assert.NoError(t, err)
		}
	}
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Health", "Learning", "Personal", "Work"}, Categories())
}
