// Package sample generates the demo dataset shown when no credential
// is available or the habit service cannot be reached. Generation is
// seeded so the same seed always yields the same habits, which keeps
// the degraded mode stable across reloads.
package sample

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/inhabitapp/inhabit/internal/models"
	"github.com/inhabitapp/inhabit/internal/stats"
)

// historyDays is the length of the generated completion window.
const historyDays = 14

// template fixes a demo habit's identity and how often it tends to be
// completed.
type template struct {
	title       string
	description string
	category    string
	probability float64
}

var templates = []template{
	{"Morning Meditation", "10 minutes of mindfulness to start the day", "Health", 0.8},
	{"Read for 30 Minutes", "Non-fiction or technical reading", "Learning", 0.9},
	{"Exercise", "Gym, run, or home workout", "Health", 0.6},
}

// Habits returns the demo habits with seeded 14-day completion
// histories ending at ref. Streaks are derived from the generated
// records with the same rules the service applies.
func Habits(seed int64, ref time.Time) []models.Habit {
	rng := rand.New(rand.NewSource(seed))

	habits := make([]models.Habit, 0, len(templates))
	for i, tpl := range templates {
		h := models.Habit{
			ID:          fmt.Sprintf("sample-%d", i+1),
			Title:       tpl.title,
			Description: tpl.description,
			Category:    tpl.category,
			CreatedAt:   ref.AddDate(0, 0, -historyDays),
		}

		for d := historyDays - 1; d >= 0; d-- {
			day := ref.AddDate(0, 0, -d)
			h.RecentCompletions = append(h.RecentCompletions, models.Completion{
				HabitID:        h.ID,
				CompletionDate: day.Format(models.DateFormat),
				Completed:      rng.Float64() < tpl.probability,
			})
		}

		h.CurrentStreak, h.LongestStreak = stats.ComputeStreaks(h.RecentCompletions, ref)
		habits = append(habits, h)
	}
	return habits
}

// Categories returns the category labels used by the demo habits.
func Categories() []string {
	return []string{"Health", "Learning", "Personal", "Work"}
}
