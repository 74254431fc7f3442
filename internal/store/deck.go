package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
)

// DeckStore defines the interface for deck persistence.
type DeckStore interface {
	// Save inserts or updates a deck.
	Save(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// FindByUserID returns all decks owned by the given user, newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error)

	// Disable conditionally retires the deck: the update only applies if
	// the deck is still active. Returns ErrDeckNotFound if the deck does
	// not exist and ErrAlreadyDisabled if it exists but was already
	// disabled.
	Disable(ctx context.Context, id uuid.UUID) error

	// DeleteAll removes every deck. Test support only.
	DeleteAll(ctx context.Context) error
}
