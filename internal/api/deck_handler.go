package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/api/shared"
	"github.com/phrazzld/deck-service/internal/domain"
)

// DeckLifecycle is the deck operation surface the handler drives.
type DeckLifecycle interface {
	CreateDeck(
		ctx context.Context,
		transactionID string,
		correlationID *uuid.UUID,
		userID uuid.UUID,
		name string,
	) (*domain.Deck, error)
	CloneDeck(
		ctx context.Context,
		transactionID string,
		correlationID *uuid.UUID,
		sourceDeckID uuid.UUID,
		userID uuid.UUID,
		newName string,
	) (*domain.Deck, error)
	DisableDeck(
		ctx context.Context,
		transactionID string,
		correlationID *uuid.UUID,
		deckID uuid.UUID,
	) error
	RenameDeck(ctx context.Context, deckID uuid.UUID, name string) (*domain.Deck, error)
	ChangePreset(ctx context.Context, deckID, presetID uuid.UUID) error
}

// DeckReader is the query surface the handler reads decks through.
type DeckReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error)
}

// DeckHandler serves the /decks endpoints.
type DeckHandler struct {
	decks  DeckLifecycle
	reader DeckReader
}

// NewDeckHandler creates a DeckHandler.
func NewDeckHandler(decks DeckLifecycle, reader DeckReader) *DeckHandler {
	return &DeckHandler{decks: decks, reader: reader}
}

// CreateDeck handles POST /decks. A referencedDeckId in the body clones
// that deck instead of creating an empty one.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRequest
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
		deck *domain.Deck
		err  error
	)
	if req.ReferencedDeckID != nil {
		deck, err = h.decks.CloneDeck(
			r.Context(), txID.String(), &txID, *req.ReferencedDeckID, req.UserID, req.DeckName)
	} else {
		deck, err = h.decks.CreateDeck(
			r.Context(), txID.String(), &txID, req.UserID, req.DeckName)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewDeckResponse(deck))
}

// GetDeck handles GET /decks/{deck-id}.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deck-id")
	if !ok {
		return
	}

	deck, err := h.reader.GetByID(r.Context(), deckID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewDeckResponse(deck))
}

// ListDecks handles GET /decks?user-id=.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user-id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid user-id")
		return
	}

	decks, err := h.reader.FindByUserID(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewDeckListResponse(decks))
}

// DisableDeck handles DELETE /decks/{deck-id}. Idempotent.
func (h *DeckHandler) DisableDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deck-id")
	if !ok {
		return
	}

	txID := uuid.New()
	if err := h.decks.DisableDeck(r.Context(), txID.String(), &txID, deckID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RenameDeck handles PUT /decks/{deck-id}.
func (h *DeckHandler) RenameDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deck-id")
	if !ok {
		return
	}

	var req RenameDeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	deck, err := h.decks.RenameDeck(r.Context(), deckID, req.DeckName)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewDeckResponse(deck))
}

// ChangePreset handles PUT /decks/{deck-id}/scheduler-presets/{preset-id}.
// Only future cards are affected; existing cards keep their embedded
// preset.
func (h *DeckHandler) ChangePreset(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deck-id")
	if !ok {
		return
	}
	presetID, ok := parseIDParam(w, r, "preset-id")
	if !ok {
		return
	}

	if err := h.decks.ChangePreset(r.Context(), deckID, presetID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseIDParam extracts and parses a UUID URL parameter, writing a 400
// response on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
