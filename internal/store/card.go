package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
)

// CardStore defines the interface for card persistence.
type CardStore interface {
	// Save inserts or updates a card, including its embedded scheduler and
	// content payload.
	Save(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// FindByDeckID returns the deck's cards filtered by status, oldest
	// first. An empty status returns cards in every status.
	FindByDeckID(ctx context.Context, deckID uuid.UUID, status domain.Status) ([]*domain.Card, error)

	// Disable conditionally retires the card: the update only applies if
	// the card is still active. Returns ErrCardNotFound if the card does
	// not exist and ErrAlreadyDisabled if it exists but was already
	// disabled. The conditional update is the single-writer guard for
	// same-card override races: of two concurrent overrides, exactly one
	// observes the active card.
	Disable(ctx context.Context, id uuid.UUID) error

	// DeleteAll removes every card. Test support only.
	DeleteAll(ctx context.Context) error
}
