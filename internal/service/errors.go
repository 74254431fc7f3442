// Package service implements the lifecycle operations over decks, cards and
// user projections: create, override, clone and disable, with their
// invariants and event emission.
package service

import (
	"errors"
	"fmt"
)

// Service-level error taxonomy. Not-found conditions surface as the store's
// sentinel errors; conflicts are losses of a race or operations on retired
// entities; validation errors come from the domain package.
var (
	// ErrConflict is returned when an operation loses a race on an
	// aggregate or targets an entity in the wrong state.
	ErrConflict = errors.New("conflict")

	// ErrCardAlreadyDisabled is returned when overriding or cloning a card
	// that has already been disabled, typically because a concurrent
	// override got there first.
	ErrCardAlreadyDisabled = fmt.Errorf("%w: card is already disabled", ErrConflict)

	// ErrDeckNotActive is returned when an operation requires an active
	// deck but the deck has been disabled.
	ErrDeckNotActive = fmt.Errorf("%w: deck is not active", ErrConflict)

	// ErrUserNotActive is returned when deck creation references a user
	// that exists but has been disabled.
	ErrUserNotActive = fmt.Errorf("%w: user is not active", ErrConflict)
)

// IsConflictError checks if the error is any kind of conflict error.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}
