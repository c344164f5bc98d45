package domain

import "errors"

var (
	// ErrUnknownItem is returned when a move references an item the store has
	// never loaded. This is caller misuse, not a recoverable condition.
	ErrUnknownItem = errors.New("item not known to the assignment store")
	// ErrUnknownRoute is returned when a move targets a route that is not in
	// the active registry.
	ErrUnknownRoute = errors.New("route not in the active registry")
	// ErrRemoteMutation is returned when the backend rejected a move. The
	// optimistic change has already been rolled back; the operator may retry.
	ErrRemoteMutation = errors.New("remote assignment mutation failed")
)
