package services

import "errors"

// Sentinel errors mapped to HTTP statuses by the handlers. Services wrap
// them with context via fmt.Errorf("...: %w", ...).
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict means the session row changed underneath the caller and
	// the refetch-and-retry also lost the race.
	ErrConflict = errors.New("revision conflict")
)
