package store

import (
	"errors"
	"fmt"
)

// ErrToggleInFlight means a toggle for the same habit has not settled
// yet. Callers should retry after the pending toggle resolves.
var ErrToggleInFlight = errors.New("toggle already in flight for habit")

// ErrHabitNotFound means the habit is not present in the store.
var ErrHabitNotFound = errors.New("habit not found in store")

// ValidationError rejects bad input before any network call is made.
type ValidationError struct {
	// Field names the offending input field.
	Field string
	// Message describes what is wrong with it.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
