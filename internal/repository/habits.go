// Package repository provides persistence implementations for the habit
// service using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inhabitapp/inhabit/internal/models"
)

// PostgresHabitRepository implements habit and completion persistence
// against a PostgreSQL database.
type PostgresHabitRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresHabitRepository creates a new PostgresHabitRepository using
// the provided *sql.DB. db must be a valid connection to a PostgreSQL
// instance.
func NewPostgresHabitRepository(db *sql.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{DB: db}
}

const habitColumns = `id, title, COALESCE(description, ''), COALESCE(category, ''), current_streak, longest_streak, created_at, is_archived`

func scanHabit(row interface{ Scan(...any) error }) (models.Habit, error) {
	var h models.Habit
	err := row.Scan(&h.ID, &h.Title, &h.Description, &h.Category,
		&h.CurrentStreak, &h.LongestStreak, &h.CreatedAt, &h.IsArchived)
	return h, err
}

// GetHabitsByUser fetches all non-deleted habits for the specified user,
// ordered by creation time. Archived habits are included only when
// includeArchived is set.
func (r *PostgresHabitRepository) GetHabitsByUser(ctx context.Context, userID string, includeArchived bool) ([]models.Habit, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+habitColumns+` FROM habits
		WHERE user_id = $1 AND deleted = false AND (is_archived = false OR $2)
		ORDER BY created_at
	`, userID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("GetHabitsByUser: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// GetHabitByID retrieves a single habit by ID for the given user.
// Returns sql.ErrNoRows when the habit does not exist or is deleted.
func (r *PostgresHabitRepository) GetHabitByID(ctx context.Context, userID, id string) (*models.Habit, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+habitColumns+` FROM habits
		WHERE user_id = $1 AND id = $2 AND deleted = false
	`, userID, id)
	h, err := scanHabit(row)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateHabit inserts a new habit row.
func (r *PostgresHabitRepository) CreateHabit(ctx context.Context, userID string, habit *models.Habit) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO habits (id, user_id, title, description, category, current_streak, longest_streak, created_at, is_archived, deleted)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6, false, false)
	`, habit.ID, userID, habit.Title, habit.Description, habit.Category, habit.CreatedAt)
	if err != nil {
		return fmt.Errorf("CreateHabit: %w", err)
	}
	return nil
}

// UpdateHabit writes the mutable habit fields (title, description,
// category, archived flag).
func (r *PostgresHabitRepository) UpdateHabit(ctx context.Context, userID string, habit *models.Habit) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE habits SET title = $3, description = $4, category = $5, is_archived = $6
		WHERE user_id = $1 AND id = $2 AND deleted = false
	`, userID, habit.ID, habit.Title, habit.Description, habit.Category, habit.IsArchived)
	if err != nil {
		return fmt.Errorf("UpdateHabit: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteHabit soft-deletes a habit. The background cleaner removes the
// row (and, via cascade, its completions) later.
func (r *PostgresHabitRepository) DeleteHabit(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE habits SET deleted = true WHERE user_id = $1 AND id = $2
	`, userID, id)
	if err != nil {
		return fmt.Errorf("DeleteHabit: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStreaks persists the recomputed streak counters for a habit.
func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, habitID string, current, longest int) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE habits SET current_streak = $2, longest_streak = $3 WHERE id = $1
	`, habitID, current, longest)
	if err != nil {
		return fmt.Errorf("UpdateStreaks: %w", err)
	}
	return nil
}

// UpsertCompletion records a completion state for (habit, date),
// updating in place on conflict so the per-day uniqueness holds.
func (r *PostgresHabitRepository) UpsertCompletion(ctx context.Context, habitID, date string, completed bool) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO completions (habit_id, completion_date, completed)
		VALUES ($1, $2, $3)
		ON CONFLICT (habit_id, completion_date) DO UPDATE SET
			completed = EXCLUDED.completed
	`, habitID, date, completed)
	if err != nil {
		return fmt.Errorf("UpsertCompletion: %w", err)
	}
	return nil
}

// GetCompletions fetches completion records for a habit within
// [start, end] inclusive, ordered by date. Empty bounds are open.
func (r *PostgresHabitRepository) GetCompletions(ctx context.Context, habitID, start, end string) ([]models.Completion, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT habit_id, to_char(completion_date, 'YYYY-MM-DD'), completed FROM completions
		WHERE habit_id = $1
		  AND ($2 = '' OR completion_date >= $2::date)
		  AND ($3 = '' OR completion_date <= $3::date)
		ORDER BY completion_date
	`, habitID, start, end)
	if err != nil {
		return nil, fmt.Errorf("GetCompletions: %w", err)
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		var c models.Completion
		if err := rows.Scan(&c.HabitID, &c.CompletionDate, &c.Completed); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// GetCategories returns the distinct non-empty categories across the
// user's habits.
func (r *PostgresHabitRepository) GetCategories(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT category FROM habits
		WHERE user_id = $1 AND deleted = false AND category IS NOT NULL AND category <> ''
		ORDER BY category
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("GetCategories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
