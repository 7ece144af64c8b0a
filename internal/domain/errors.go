package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	// ErrRoomNotFound indicates an operation referenced a room id that does
	// not exist in the store.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomExists indicates a room creation attempt collided with an
	// existing room id. Callers can recover by redirecting to the existing
	// room instead of failing.
	ErrRoomExists = errors.New("room already exists")
)
