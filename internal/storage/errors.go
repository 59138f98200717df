package storage

import "errors"

// Common store errors. Drivers return these so callers can classify
// failures with errors.Is regardless of the backend.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("storage: record not found")

	// ErrConflict is returned by RunAttempt when a conflicting
	// concurrent commit kept invalidating the attempt past its retry
	// budget.
	ErrConflict = errors.New("storage: attempt conflict")

	// ErrUnavailable is returned when the underlying store cannot be
	// reached for infrastructural reasons.
	ErrUnavailable = errors.New("storage: store unavailable")
)

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
