// Package models defines the core data structures for users, habits,
// and per-day completion records.
package models

import "time"

// DateFormat is the calendar-date layout used everywhere a completion
// date crosses a boundary (API, database, client state).
const DateFormat = "2006-01-02"

// User represents an application user.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Name is the display name chosen by the user.
	Name string `json:"name"`
	// Email is the login email address.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized.
	PasswordHash []byte `json:"-"`
	// CreatedAt is when the account was registered.
	CreatedAt time.Time `json:"created_at"`
}

// Habit represents a daily habit being tracked.
type Habit struct {
	// ID is the durable identifier assigned by the service.
	ID string `json:"id"`
	// Title is the habit name. Must be non-empty.
	Title string `json:"title"`
	// Description holds optional free-form detail.
	Description string `json:"description,omitempty"`
	// Category is an optional user-defined grouping label.
	Category string `json:"category,omitempty"`
	// CurrentStreak is the consecutive-day run ending at the reference
	// date. Recomputed by the service on every toggle.
	CurrentStreak int `json:"current_streak"`
	// LongestStreak is the longest run ever observed. Always
	// >= CurrentStreak after a recompute.
	LongestStreak int `json:"longest_streak"`
	// CreatedAt is when the habit was created.
	CreatedAt time.Time `json:"created_at"`
	// IsArchived marks a soft-deleted habit.
	IsArchived bool `json:"is_archived"`
	// RecentCompletions holds the trailing completion records
	// (bounded, typically 14 days) ordered by date.
	RecentCompletions []Completion `json:"recent_completions,omitempty"`
}

// CompletedOn reports whether the habit has a completed record for the
// given calendar date (YYYY-MM-DD).
func (h *Habit) CompletedOn(date string) bool {
	for _, c := range h.RecentCompletions {
		if c.CompletionDate == date && c.Completed {
			return true
		}
	}
	return false
}

// Completion is a per-day record of whether a habit was performed.
// At most one record exists per (habit, date) pair.
type Completion struct {
	// HabitID references the owning habit.
	HabitID string `json:"habit_id"`
	// CompletionDate is the calendar date (YYYY-MM-DD), no time component.
	CompletionDate string `json:"completion_date"`
	// Completed is whether the habit was performed on that date.
	Completed bool `json:"completed"`
}

// DateStats summarizes completions for a single calendar date.
type DateStats struct {
	// Total is the number of habits considered.
	Total int `json:"total"`
	// Completed is how many of them were completed on the date.
	Completed int `json:"completed"`
	// CompletionRate is Completed/Total*100, or 0 when Total is 0.
	CompletionRate float64 `json:"completion_rate"`
}

// HistoryDay is one entry of a rolling completion history window.
type HistoryDay struct {
	// Date is the calendar date (YYYY-MM-DD).
	Date string `json:"date"`
	// Completed is whether the habit was done on that date.
	Completed bool `json:"completed"`
	// IsToday marks the reference date's entry.
	IsToday bool `json:"is_today"`
}

// DaySummary aggregates all habits for one day of a weekly rollup.
type DaySummary struct {
	// Day is the short weekday name (Mon..Sun).
	Day string `json:"day"`
	// Date is the calendar date (YYYY-MM-DD).
	Date string `json:"date"`
	// Completed is how many habits were completed that day.
	Completed int `json:"completed"`
	// Total is how many habits existed.
	Total int `json:"total"`
	// IsToday marks the reference date's entry.
	IsToday bool `json:"is_today"`
}

// CalendarEntry is one habit's completion state on a calendar date.
type CalendarEntry struct {
	// HabitID references the habit.
	HabitID string `json:"habit_id"`
	// HabitTitle is carried along so consumers need no second lookup.
	HabitTitle string `json:"habit_title"`
	// Completed is the state on that date.
	Completed bool `json:"completed"`
}
