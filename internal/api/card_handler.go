package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/api/shared"
	"github.com/phrazzld/deck-service/internal/domain"
	"github.com/phrazzld/deck-service/internal/domain/scheduler"
)

// CardLifecycle is the card operation surface the handler drives.
type CardLifecycle interface {
	CreateCard(
		ctx context.Context,
		transactionID string,
		correlationID *uuid.UUID,
		deckID uuid.UUID,
		content *domain.CardContent,
	) (*domain.Card, error)
	OverrideCard(
		ctx context.Context,
		transactionID string,
		correlationID *uuid.UUID,
		deckID uuid.UUID,
		oldCardID uuid.UUID,
		content *domain.CardContent,
	) (*domain.Card, error)
	CloneCard(
		ctx context.Context,
		transactionID string,
		correlationID *uuid.UUID,
		sourceCardID uuid.UUID,
		targetDeckID uuid.UUID,
	) (*domain.Card, error)
	DisableCard(
		ctx context.Context,
		transactionID string,
		correlationID *uuid.UUID,
		cardID uuid.UUID,
	) error
	ReviewCard(
		ctx context.Context,
		cardID uuid.UUID,
		action scheduler.ReviewAction,
	) (*domain.Card, error)
	ResetScheduler(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)
	GraduateCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)
	ReplaceSchedulerPreset(ctx context.Context, cardID, presetID uuid.UUID) (*domain.Card, error)
}

// CardReader is the query surface the handler reads cards through.
type CardReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	FindByDeckID(ctx context.Context, deckID uuid.UUID, status domain.Status) ([]*domain.Card, error)
}

// CardHandler serves the /cards endpoints.
type CardHandler struct {
	cards  CardLifecycle
	reader CardReader
}

// NewCardHandler creates a CardHandler.
func NewCardHandler(cards CardLifecycle, reader CardReader) *CardHandler {
	return &CardHandler{cards: cards, reader: reader}
}

// CreateCard handles POST /cards. A referencedCardId in the body clones
// that card into the deck instead of creating one from the body's views.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	txID := uuid.New()
	var (
		card *domain.Card
		err  error
	)
	if req.ReferencedCardID != nil {
		card, err = h.cards.CloneCard(
			r.Context(), txID.String(), &txID, *req.ReferencedCardID, req.DeckID)
	} else {
		card, err = h.cards.CreateCard(
			r.Context(), txID.String(), &txID, req.DeckID, content(req.Hint, req.Front, req.Back))
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewCardResponse(card))
}

// GetCard handles GET /cards/{card-id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := parseIDParam(w, r, "card-id")
	if !ok {
		return
	}

	card, err := h.reader.GetByID(r.Context(), cardID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponse(card))
}

// ListCards handles GET /cards?deck-id=&card-status=. Omitting card-status
// returns cards in every status.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := uuid.Parse(r.URL.Query().Get("deck-id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid deck-id")
		return
	}

	status := domain.Status(r.URL.Query().Get("card-status"))
	if status != "" && !domain.ValidStatus(status) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid card-status")
		return
	}

	cards, err := h.reader.FindByDeckID(r.Context(), deckID, status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardListResponse(cards))
}

// OverrideCard handles PUT /cards/{card-id}. The card's deck is resolved
// from the stored card; the old card is disabled and a successor with the
// body's views takes its place.
func (h *CardHandler) OverrideCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := parseIDParam(w, r, "card-id")
	if !ok {
		return
	}

	var req OverrideCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	old, err := h.reader.GetByID(r.Context(), cardID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	txID := uuid.New()
	card, err := h.cards.OverrideCard(
		r.Context(), txID.String(), &txID, old.DeckID, cardID,
		content(req.Hint, req.Front, req.Back))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponse(card))
}

// DisableCard handles DELETE /cards/{card-id}. Idempotent.
func (h *CardHandler) DisableCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := parseIDParam(w, r, "card-id")
	if !ok {
		return
	}

	txID := uuid.New()
	if err := h.cards.DisableCard(r.Context(), txID.String(), &txID, cardID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReviewCard handles POST /cards/{card-id}/scheduler/activity/review.
func (h *CardHandler) ReviewCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := parseIDParam(w, r, "card-id")
	if !ok {
		return
	}

	var req ReviewCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	card, err := h.cards.ReviewCard(r.Context(), cardID, scheduler.ReviewAction(req.ReviewAction))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponse(card))
}

// ResetScheduler handles POST /cards/{card-id}/scheduler/activity/reset.
func (h *CardHandler) ResetScheduler(w http.ResponseWriter, r *http.Request) {
	cardID, ok := parseIDParam(w, r, "card-id")
	if !ok {
		return
	}

	card, err := h.cards.ResetScheduler(r.Context(), cardID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponse(card))
}

// GraduateCard handles POST /cards/{card-id}/scheduler/activity/graduate.
func (h *CardHandler) GraduateCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := parseIDParam(w, r, "card-id")
	if !ok {
		return
	}

	card, err := h.cards.GraduateCard(r.Context(), cardID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponse(card))
}

// ReplacePreset handles PUT /cards/{card-id}/scheduler-presets/{preset-id}.
func (h *CardHandler) ReplacePreset(w http.ResponseWriter, r *http.Request) {
	cardID, ok := parseIDParam(w, r, "card-id")
	if !ok {
		return
	}
	presetID, ok := parseIDParam(w, r, "preset-id")
	if !ok {
		return
	}

	card, err := h.cards.ReplaceSchedulerPreset(r.Context(), cardID, presetID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponse(card))
}
