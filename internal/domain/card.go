package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain/scheduler"
)

// CardKind discriminates card variants. The base capability set (lineage,
// scheduler, status) is shared; content is the variant-specific payload.
type CardKind string

const (
	// CardKindDefault is the content-bearing card with hint/front/back views.
	CardKindDefault CardKind = "default"
)

// Card is a single flashcard. ParentID, when set, points at the card this
// one overrode; the parent/child edges form a forest and are never copied
// by clones. The scheduler is embedded 1:1 and owns review progress.
type Card struct {
	ID        uuid.UUID           `json:"id"`
	DeckID    uuid.UUID           `json:"deck_id"`
	ParentID  *uuid.UUID          `json:"parent_id,omitempty"`
	Kind      CardKind            `json:"kind"`
	Content   *CardContent        `json:"content,omitempty"`
	Scheduler scheduler.Scheduler `json:"scheduler"`
	Status    Status              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewCard creates an active card in the given deck with a fresh scheduler
// built from the given preset. Content may be nil for a bare card.
func NewCard(deckID uuid.UUID, content *CardContent, preset scheduler.Preset) (*Card, error) {
	if deckID == uuid.Nil {
		return nil, fmt.Errorf("%w: card deck ID cannot be nil", ErrInvalidID)
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sched, err := scheduler.New(preset, now)
	if err != nil {
		return nil, err
	}

	return &Card{
		ID:        uuid.New(),
		DeckID:    deckID,
		Kind:      CardKindDefault,
		Content:   content,
		Scheduler: sched,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewOverridingCard creates the successor of parent: a new active card in
// the same deck whose ParentID is the parent's ID and whose scheduler is
// fresh. The parent must still be active; disabling it is the caller's
// (transactional) responsibility.
func NewOverridingCard(parent *Card, content *CardContent) (*Card, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: parent card cannot be nil", ErrValidation)
	}
	if !parent.Status.IsActive() {
		return nil, fmt.Errorf("%w: cannot override disabled card %s", ErrNotActive, parent.ID)
	}

	card, err := NewCard(parent.DeckID, content, parent.Scheduler.Preset)
	if err != nil {
		return nil, err
	}
	parentID := parent.ID
	card.ParentID = &parentID
	return card, nil
}

// NewClonedCard copies the source card's content into the target deck with
// a fresh scheduler and no lineage link. The source must be active and is
// left untouched.
func NewClonedCard(source *Card, targetDeckID uuid.UUID, preset scheduler.Preset) (*Card, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: source card cannot be nil", ErrValidation)
	}
	if !source.Status.IsActive() {
		return nil, fmt.Errorf("%w: cannot clone disabled card %s", ErrNotActive, source.ID)
	}
	return NewCard(targetDeckID, source.Content.Clone(), preset)
}

// Disable retires the card. One-way and idempotent; lineage is untouched.
func (c *Card) Disable() {
	c.Status = c.Status.Disable()
	c.UpdatedAt = time.Now().UTC()
}

// Review applies a graded review to the embedded scheduler.
func (c *Card) Review(action scheduler.ReviewAction, now time.Time) error {
	next, err := c.Scheduler.Review(action, now)
	if err != nil {
		return err
	}
	c.Scheduler = next
	c.UpdatedAt = now.UTC()
	return nil
}

// ResetScheduler force-returns the embedded scheduler to the new state.
func (c *Card) ResetScheduler(now time.Time) {
	c.Scheduler = c.Scheduler.Reset(now)
	c.UpdatedAt = now.UTC()
}

// GraduateCard force-promotes the embedded scheduler.
func (c *Card) GraduateCard(now time.Time) {
	c.Scheduler = c.Scheduler.Graduate(now)
	c.UpdatedAt = now.UTC()
}

// ReplaceSchedulerPreset swaps the embedded scheduler's policy, keeping the
// card's current state and interval.
func (c *Card) ReplaceSchedulerPreset(preset scheduler.Preset) error {
	next, err := c.Scheduler.UpdatePreset(preset)
	if err != nil {
		return err
	}
	c.Scheduler = next
	c.UpdatedAt = time.Now().UTC()
	return nil
}
