package store

import (
	"errors"
	"fmt"

	"roomly/backend/internal/domain"
)

var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// ConflictError carries the booking that blocked a write. It unwraps to
// ErrConflict so callers can keep matching with errors.Is.
type ConflictError struct {
	Existing domain.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict with booking %s (%s %s-%s)",
		e.Existing.ID, e.Existing.Date, e.Existing.StartMinutes, e.Existing.EndMinutes)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
