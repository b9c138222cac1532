package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhabitapp/inhabit/internal/models"
)

var exportRef = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func exportHabits() []models.Habit {
	return []models.Habit{
		{
			ID:            "h1",
			Title:         "Read",
			Description:   "30 minutes",
			Category:      "Learning",
			CurrentStreak: 3,
			LongestStreak: 8,
			CreatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			RecentCompletions: []models.Completion{
				{HabitID: "h1", CompletionDate: "2024-03-09", Completed: true},
				{HabitID: "h1", CompletionDate: "2024-03-10", Completed: true},
			},
		},
		{
			ID:            "h2",
			Title:         "Exercise",
			Category:      "Health",
			LongestStreak: 2,
			CreatedAt:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			IsArchived:    true,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportHabits(), exportRef))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvHeader, rows[0])

	read := rows[1]
	assert.Equal(t, "Read", read[0])
	assert.Equal(t, "30 minutes", read[1])
	assert.Equal(t, "Learning", read[2])
	assert.Equal(t, "3", read[3])
	assert.Equal(t, "8", read[4])
	assert.Equal(t, "2024-01-01", read[5])
	assert.Equal(t, "false", read[6])
	// 2 completed days over a 14-day window.
	assert.Equal(t, "14.3%", read[7])

	exercise := rows[2]
	assert.Equal(t, "true", exercise[6])
	assert.Equal(t, "0.0%", exercise[7])
}

func TestWriteCSV_NoHabits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, exportRef))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument("Ann", exportHabits(), exportRef)

	assert.Equal(t, "2024-03-10", doc.ExportDate)
	assert.Equal(t, "Ann", doc.User)
	assert.Equal(t, 2, doc.Summary.TotalHabits)
	assert.Equal(t, 8, doc.Summary.BestStreak)
	// Mean of 14.29% and 0%.
	assert.InDelta(t, 7.14, doc.Summary.AverageCompletionRate, 0.01)
}

func TestBuildDocument_Empty(t *testing.T) {
	doc := BuildDocument("Ann", nil, exportRef)

	assert.Equal(t, 0, doc.Summary.TotalHabits)
	assert.Equal(t, 0, doc.Summary.BestStreak)
	assert.Zero(t, doc.Summary.AverageCompletionRate)
	assert.NotNil(t, doc.Habits)
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, "Ann", exportHabits(), exportRef))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Ann", doc.User)
	assert.Len(t, doc.Habits, 2)
	assert.Equal(t, "Read", doc.Habits[0].Title)
}
