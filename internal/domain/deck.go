package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// deckNamePattern restricts deck names to letters, digits, spaces and
// dashes, 1 to 64 characters.
var deckNamePattern = regexp.MustCompile(`^[\w\- ]{1,64}$`)

// Deck groups cards for a single owning user. Every deck carries a default
// scheduler preset that newly created cards embed at creation time; changing
// the deck's preset later never retroactively alters existing cards.
type Deck struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UserID    uuid.UUID `json:"user_id"`
	PresetID  uuid.UUID `json:"preset_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDeck creates an active deck for the given user with the given default
// scheduler preset. Returns an error if validation fails.
func NewDeck(userID, presetID uuid.UUID, name string) (*Deck, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: deck user ID cannot be nil", ErrInvalidID)
	}
	if presetID == uuid.Nil {
		return nil, fmt.Errorf("%w: deck preset ID cannot be nil", ErrInvalidID)
	}
	if err := ValidateDeckName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Deck{
		ID:        uuid.New(),
		Name:      name,
		UserID:    userID,
		PresetID:  presetID,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateDeckName checks that a deck name is well-formed.
func ValidateDeckName(name string) error {
	if !deckNamePattern.MatchString(name) {
		return fmt.Errorf(
			"%w: %q must be 1-64 letters, digits, spaces or dashes",
			ErrInvalidDeckName, name)
	}
	return nil
}

// Rename changes the deck name after validating it.
func (d *Deck) Rename(name string) error {
	if err := ValidateDeckName(name); err != nil {
		return err
	}
	d.Name = name
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// ChangePreset points the deck at a new default scheduler preset. This is a
// metadata change only: cards already in the deck keep the preset embedded
// in their schedulers.
func (d *Deck) ChangePreset(presetID uuid.UUID) error {
	if presetID == uuid.Nil {
		return fmt.Errorf("%w: deck preset ID cannot be nil", ErrInvalidID)
	}
	d.PresetID = presetID
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// Disable retires the deck. The transition is one-way and idempotent; it
// does not cascade to the deck's cards.
func (d *Deck) Disable() {
	d.Status = d.Status.Disable()
	d.UpdatedAt = time.Now().UTC()
}
