package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
)

// Request models

// CreateDeckRequest is the request body for creating a deck. A populated
// ReferencedDeckID turns the creation into a clone of that deck.
type CreateDeckRequest struct {
	UserID           uuid.UUID  `json:"userId"            validate:"required"`
	DeckName         string     `json:"deckName"          validate:"required,min=1,max=64"`
	ReferencedDeckID *uuid.UUID `json:"referencedDeckId,omitempty"`
}

// RenameDeckRequest is the request body for renaming a deck.
type RenameDeckRequest struct {
	DeckName string `json:"deckName" validate:"required,min=1,max=64"`
}

// CreateCardRequest is the request body for creating a card. A populated
// ReferencedCardID turns the creation into a clone of that card.
type CreateCardRequest struct {
	DeckID           uuid.UUID   `json:"deckId" validate:"required"`
	ReferencedCardID *uuid.UUID  `json:"referencedCardId,omitempty"`
	Hint             domain.View `json:"hint,omitempty"`
	Front            domain.View `json:"frontView,omitempty"`
	Back             domain.View `json:"backView,omitempty"`
}

// OverrideCardRequest is the request body for overriding a card's content.
type OverrideCardRequest struct {
	Hint  domain.View `json:"hint,omitempty"`
	Front domain.View `json:"frontView,omitempty"`
	Back  domain.View `json:"backView,omitempty"`
}

// ReviewCardRequest is the request body for a graded review.
type ReviewCardRequest struct {
	ReviewAction string `json:"reviewAction" validate:"required"`
}

// content maps the request's views to the domain content type. All views
// empty means a bare card.
func content(hint, front, back domain.View) *domain.CardContent {
	if len(hint) == 0 && len(front) == 0 && len(back) == 0 {
		return nil
	}
	return &domain.CardContent{Hint: hint, Front: front, Back: back}
}

// Response models

// DeckResponse is the wire shape of a deck.
type DeckResponse struct {
	DeckID    uuid.UUID `json:"deckId"`
	UserID    uuid.UUID `json:"userId"`
	DeckName  string    `json:"deckName"`
	PresetID  uuid.UUID `json:"schedulerPresetId"`
	Status    string    `json:"deckStatus"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewDeckResponse maps a domain deck to its wire shape.
func NewDeckResponse(deck *domain.Deck) DeckResponse {
	return DeckResponse{
		DeckID:    deck.ID,
		UserID:    deck.UserID,
		DeckName:  deck.Name,
		PresetID:  deck.PresetID,
		Status:    string(deck.Status),
		CreatedAt: deck.CreatedAt,
	}
}

// SchedulerResponse is the wire shape of a card's scheduler posture.
type SchedulerResponse struct {
	State    string    `json:"state"`
	Interval string    `json:"interval"`
	Ease     float64   `json:"ease"`
	DueAt    time.Time `json:"dueAt"`

	// Pointer so a never-reviewed card omits the field instead of
	// serializing the zero time.
	LastReviewedAt *time.Time `json:"lastReviewedAt,omitempty"`
	PresetID       uuid.UUID  `json:"presetId"`
}

// CardResponse is the wire shape of a card.
type CardResponse struct {
	CardID    uuid.UUID         `json:"cardId"`
	DeckID    uuid.UUID         `json:"deckId"`
	ParentID  *uuid.UUID        `json:"parentCardId,omitempty"`
	Kind      string            `json:"cardKind"`
	Status    string            `json:"cardStatus"`
	Hint      domain.View       `json:"hint,omitempty"`
	Front     domain.View       `json:"frontView,omitempty"`
	Back      domain.View       `json:"backView,omitempty"`
	Scheduler SchedulerResponse `json:"scheduler"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewCardResponse maps a domain card to its wire shape.
func NewCardResponse(card *domain.Card) CardResponse {
	resp := CardResponse{
		CardID:   card.ID,
		DeckID:   card.DeckID,
		ParentID: card.ParentID,
		Kind:     string(card.Kind),
		Status:   string(card.Status),
		Scheduler: SchedulerResponse{
			State:    string(card.Scheduler.State),
			Interval: card.Scheduler.Interval.String(),
			Ease:     card.Scheduler.Ease,
			DueAt:    card.Scheduler.DueAt,
			PresetID: card.Scheduler.Preset.ID,
		},
		CreatedAt: card.CreatedAt,
	}
	if !card.Scheduler.LastReviewedAt.IsZero() {
		reviewed := card.Scheduler.LastReviewedAt
		resp.Scheduler.LastReviewedAt = &reviewed
	}
	if card.Content != nil {
		resp.Hint = card.Content.Hint
		resp.Front = card.Content.Front
		resp.Back = card.Content.Back
	}
	return resp
}

// NewCardListResponse maps a slice of domain cards to their wire shape.
func NewCardListResponse(cards []*domain.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, NewCardResponse(card))
	}
	return out
}

// NewDeckListResponse maps a slice of domain decks to their wire shape.
func NewDeckListResponse(decks []*domain.Deck) []DeckResponse {
	out := make([]DeckResponse, 0, len(decks))
	for _, deck := range decks {
		out = append(out, NewDeckResponse(deck))
	}
	return out
}
