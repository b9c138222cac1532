// Package export serializes a user's habits for download, as CSV rows
// or as a JSON document with summary statistics.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/inhabitapp/inhabit/internal/models"
	"github.com/inhabitapp/inhabit/internal/stats"
)

// rateWindowDays is the window used for the per-habit completion rate.
const rateWindowDays = 14

var csvHeader = []string{
	"title", "description", "category",
	"current_streak", "longest_streak",
	"created_at", "is_archived", "completion_rate",
}

// WriteCSV writes one row per habit with its recent completion rate
// over the trailing window ending at ref.
func WriteCSV(w io.Writer, habits []models.Habit, ref time.Time) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range habits {
		h := &habits[i]
		rate := stats.CompletionRate(stats.BuildCompletionHistory(h, ref, rateWindowDays))
		row := []string{
			h.Title,
			h.Description,
			h.Category,
			fmt.Sprint(h.CurrentStreak),
			fmt.Sprint(h.LongestStreak),
			h.CreatedAt.Format(models.DateFormat),
			fmt.Sprint(h.IsArchived),
			fmt.Sprintf("%.1f%%", rate),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Summary aggregates the exported habits.
type Summary struct {
	TotalHabits           int     `json:"total_habits"`
	BestStreak            int     `json:"best_streak"`
	AverageCompletionRate float64 `json:"average_completion_rate"`
}

// Document is the JSON export payload.
type Document struct {
	ExportDate string         `json:"export_date"`
	User       string         `json:"user"`
	Summary    Summary        `json:"summary"`
	Habits     []models.Habit `json:"habits"`
}

// BuildDocument assembles the JSON export for the given user and
// habits at the reference time.
func BuildDocument(userName string, habits []models.Habit, ref time.Time) Document {
	doc := Document{
		ExportDate: ref.Format(models.DateFormat),
		User:       userName,
		Summary:    Summary{TotalHabits: len(habits)},
		Habits:     habits,
	}
	if doc.Habits == nil {
		doc.Habits = []models.Habit{}
	}

	var rateSum float64
	for i := range habits {
		h := &habits[i]
		if h.LongestStreak > doc.Summary.BestStreak {
			doc.Summary.BestStreak = h.LongestStreak
		}
		rateSum += stats.CompletionRate(stats.BuildCompletionHistory(h, ref, rateWindowDays))
	}
	if len(habits) > 0 {
		doc.Summary.AverageCompletionRate = rateSum / float64(len(habits))
	}
	return doc
}

// WriteJSON writes the indented JSON export document.
func WriteJSON(w io.Writer, userName string, habits []models.Habit, ref time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDocument(userName, habits, ref))
}
