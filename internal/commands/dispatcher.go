// Package commands receives inbound command and change-data envelopes from
// the message bus, maps each to exactly one lifecycle operation, and
// surfaces domain failures to the transport for its retry/dead-letter
// policy. Malformed or unknown envelopes are logged and dropped; they never
// crash the consumer loop and never reach a lifecycle operation.
package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
	"github.com/phrazzld/deck-service/internal/events"
	"github.com/phrazzld/deck-service/internal/platform/logger"
)

// Command names accepted on the deck-cards command topic.
const (
	NameCreateDeck   = "create-deck"
	NameCloneDeck    = "clone-deck"
	NameOverrideCard = "override-card"
	NameCloneCard    = "clone-card"
)

// Command payload DTOs (wire shapes of the command topic).

// CreateDeckPayload requests a new deck for a user.
type CreateDeckPayload struct {
	UserID   uuid.UUID `json:"userId"`
	DeckName string    `json:"deckName"`
}

// CloneDeckPayload requests a full clone of an existing deck.
type CloneDeckPayload struct {
	ReferencedDeckID uuid.UUID `json:"referencedDeckId"`
	UserID           uuid.UUID `json:"userId"`
	DeckName         string    `json:"deckName"`
}

// OverrideCardPayload requests replacing a card with new content.
type OverrideCardPayload struct {
	DeckID           uuid.UUID   `json:"deckId"`
	ReferencedCardID uuid.UUID   `json:"referencedCardId"`
	Hint             domain.View `json:"hint,omitempty"`
	Front            domain.View `json:"frontView,omitempty"`
	Back             domain.View `json:"backView,omitempty"`
}

// content maps the override payload to the domain content type.
func (p OverrideCardPayload) content() *domain.CardContent {
	if len(p.Hint) == 0 && len(p.Front) == 0 && len(p.Back) == 0 {
		return nil
	}
	return &domain.CardContent{Hint: p.Hint, Front: p.Front, Back: p.Back}
}

// CloneCardPayload requests copying a card into a (possibly different) deck.
type CloneCardPayload struct {
	ReferencedCardID uuid.UUID `json:"referencedCardId"`
	DeckID           uuid.UUID `json:"deckId"`
}

// DeckOperations is the deck lifecycle surface the dispatcher drives.
type DeckOperations interface {
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
}

// CardOperations is the card lifecycle surface the dispatcher drives.
type CardOperations interface {
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
}

// Dispatcher routes command envelopes to lifecycle operations. Dispatch is
// a total function over the envelope type: every known type maps to exactly
// one operation, everything else is logged and dropped.
type Dispatcher struct {
	decks  DeckOperations
	cards  CardOperations
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(decks DeckOperations, cards CardOperations, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		decks:  decks,
		cards:  cards,
		logger: log.With(slog.String("component", "command_dispatcher")),
	}
}

var _ events.Handler = (*Dispatcher)(nil)

// HandleRaw decodes a serialized envelope and dispatches it. A payload that
// is not a valid envelope is fatal to that single command only: it is
// logged and discarded without an error, keeping the consumer loop alive.
func (d *Dispatcher) HandleRaw(ctx context.Context, raw []byte) error {
	var cmd events.Event
	if err := json.Unmarshal(raw, &cmd); err != nil {
		log := logger.FromContextOrDefault(ctx, d.logger)
		log.Error("discarding malformed command envelope",
			slog.String("error", err.Error()))
		return nil
	}
	return d.HandleEvent(ctx, cmd)
}

// HandleEvent implements events.Handler. On success the triggered lifecycle
// operation has emitted exactly one change-data event whose correlation is
// the inbound command's transaction; on domain failure the error is
// returned to the transport and nothing is emitted.
func (d *Dispatcher) HandleEvent(ctx context.Context, cmd events.Event) error {
	log := logger.FromContextOrDefault(ctx, d.logger).With(
		slog.String("event_id", cmd.ID.String()),
		slog.String("event_type", cmd.Name),
		slog.String("transaction_id", cmd.TransactionID))
	ctx = logger.WithLogger(ctx, log)

	// The outbound event's correlation is the inbound transaction.
	correlationID := correlationFromTransaction(cmd.TransactionID)

	switch cmd.Name {
	case NameCreateDeck:
		var payload CreateDeckPayload
		if err := cmd.UnmarshalPayload(&payload); err != nil {
			return d.discardMalformed(log, cmd, err)
		}
		_, err := d.decks.CreateDeck(
			ctx, cmd.TransactionID, correlationID, payload.UserID, payload.DeckName)
		return err

	case NameCloneDeck:
		var payload CloneDeckPayload
		if err := cmd.UnmarshalPayload(&payload); err != nil {
			return d.discardMalformed(log, cmd, err)
		}
		_, err := d.decks.CloneDeck(
			ctx, cmd.TransactionID, correlationID,
			payload.ReferencedDeckID, payload.UserID, payload.DeckName)
		return err

	case NameOverrideCard:
		var payload OverrideCardPayload
		if err := cmd.UnmarshalPayload(&payload); err != nil {
			return d.discardMalformed(log, cmd, err)
		}
		_, err := d.cards.OverrideCard(
			ctx, cmd.TransactionID, correlationID,
			payload.DeckID, payload.ReferencedCardID, payload.content())
		return err

	case NameCloneCard:
		var payload CloneCardPayload
		if err := cmd.UnmarshalPayload(&payload); err != nil {
			return d.discardMalformed(log, cmd, err)
		}
		_, err := d.cards.CloneCard(
			ctx, cmd.TransactionID, correlationID,
			payload.ReferencedCardID, payload.DeckID)
		return err

	default:
		log.Warn("received command of unknown type, dropping")
		return nil
	}
}

// discardMalformed logs a payload deserialization failure and drops the
// command without escalating to the transport.
func (d *Dispatcher) discardMalformed(log *slog.Logger, cmd events.Event, err error) error {
	log.Error("discarding command with malformed payload",
		slog.String("error", err.Error()))
	return nil
}

// correlationFromTransaction derives the outbound correlation ID from an
// inbound transaction ID. Transaction IDs on this bus are UUIDs in string
// form; anything else yields a null correlation.
func correlationFromTransaction(transactionID string) *uuid.UUID {
	id, err := uuid.Parse(transactionID)
	if err != nil {
		return nil
	}
	return &id
}
