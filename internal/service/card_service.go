package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
	"github.com/phrazzld/deck-service/internal/domain/scheduler"
	"github.com/phrazzld/deck-service/internal/events"
	"github.com/phrazzld/deck-service/internal/platform/logger"
	"github.com/phrazzld/deck-service/internal/store"
)

// CardService implements the card lifecycle operations: create, override,
// clone and disable, plus the review surface of the embedded scheduler.
type CardService struct {
	cards   store.CardStore
	decks   store.DeckStore
	presets store.PresetStore
	tx      store.Transactor
	emitter events.Emitter
	logger  *slog.Logger
}

// NewCardService creates a CardService.
func NewCardService(
	cards store.CardStore,
	decks store.DeckStore,
	presets store.PresetStore,
	tx store.Transactor,
	emitter events.Emitter,
	log *slog.Logger,
) *CardService {
	if log == nil {
		log = slog.Default()
	}
	return &CardService{
		cards:   cards,
		decks:   decks,
		presets: presets,
		tx:      tx,
		emitter: emitter,
		logger:  log.With(slog.String("component", "card_service")),
	}
}

// CreateCard constructs a new active card in the deck with a fresh
// scheduler embedded in the deck's current preset. Content may be nil for
// a bare card. Returns store.ErrDeckNotFound if the deck is unknown and
// ErrDeckNotActive if it has been disabled.
func (s *CardService) CreateCard(
	ctx context.Context,
	transactionID string,
	correlationID *uuid.UUID,
	deckID uuid.UUID,
	content *domain.CardContent,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if !deck.Status.IsActive() {
		return nil, ErrDeckNotActive
	}
	preset, err := s.presets.GetByID(ctx, deck.PresetID)
	if err != nil {
		return nil, err
	}

	card, err := domain.NewCard(deckID, content, preset)
	if err != nil {
		return nil, err
	}
	if err := s.cards.Save(ctx, card); err != nil {
		return nil, err
	}

	log.Info("created card",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deckID.String()),
		slog.String("transaction_id", transactionID))

	s.emitCardCreated(ctx, transactionID, correlationID, card)
	return card, nil
}

// OverrideCard replaces a card's content by disabling the old card and
// creating a linked successor with a fresh scheduler, as one atomic unit.
// Exactly one of two concurrent overrides on the same card succeeds: the
// loser observes the winner's disablement and fails with
// ErrCardAlreadyDisabled. Returns store.ErrCardNotFound if the card is
// unknown or not in the given deck.
func (s *CardService) OverrideCard(
	ctx context.Context,
	transactionID string,
	correlationID *uuid.UUID,
	deckID uuid.UUID,
	oldCardID uuid.UUID,
	content *domain.CardContent,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var newCard *domain.Card
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		oldCard, err := s.cards.GetByID(ctx, oldCardID)
		if err != nil {
			return err
		}
		if oldCard.DeckID != deckID {
			return store.ErrCardNotFound
		}

		// The conditional disable is the single-writer guard: it only
		// applies while the card is still active, so a concurrent override
		// that already disabled it surfaces here as a conflict.
		switch err := s.cards.Disable(ctx, oldCardID); {
		case err == nil:
		case errors.Is(err, store.ErrAlreadyDisabled):
			return ErrCardAlreadyDisabled
		default:
			return err
		}

		newCard, err = domain.NewOverridingCard(oldCard, content)
		if err != nil {
			return err
		}
		return s.cards.Save(ctx, newCard)
	})
	if err != nil {
		return nil, err
	}

	log.Info("overrode card",
		slog.String("old_card_id", oldCardID.String()),
		slog.String("card_id", newCard.ID.String()),
		slog.String("deck_id", deckID.String()),
		slog.String("transaction_id", transactionID))

	s.emitCardDisabled(ctx, transactionID, correlationID, oldCardID, deckID)
	return newCard, nil
}

// CloneCard copies the source card's content into the target deck as a new
// active card with no lineage and a fresh scheduler in the target deck's
// preset. The source card is untouched. Returns store.ErrCardNotFound /
// store.ErrDeckNotFound for unknown IDs and ErrCardAlreadyDisabled if the
// source card has been disabled.
func (s *CardService) CloneCard(
	ctx context.Context,
	transactionID string,
	correlationID *uuid.UUID,
	sourceCardID uuid.UUID,
	targetDeckID uuid.UUID,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	source, err := s.cards.GetByID(ctx, sourceCardID)
	if err != nil {
		return nil, err
	}
	if !source.Status.IsActive() {
		return nil, ErrCardAlreadyDisabled
	}
	deck, err := s.decks.GetByID(ctx, targetDeckID)
	if err != nil {
		return nil, err
	}
	if !deck.Status.IsActive() {
		return nil, ErrDeckNotActive
	}
	preset, err := s.presets.GetByID(ctx, deck.PresetID)
	if err != nil {
		return nil, err
	}

	clone, err := domain.NewClonedCard(source, targetDeckID, preset)
	if err != nil {
		return nil, err
	}
	if err := s.cards.Save(ctx, clone); err != nil {
		return nil, err
	}

	log.Info("cloned card",
		slog.String("source_card_id", sourceCardID.String()),
		slog.String("card_id", clone.ID.String()),
		slog.String("deck_id", targetDeckID.String()),
		slog.String("transaction_id", transactionID))

	s.emitCardCreated(ctx, transactionID, correlationID, clone)
	return clone, nil
}

// DisableCard retires the card. Idempotent: disabling an already-disabled
// card succeeds without emitting another event. Lineage is untouched.
func (s *CardService) DisableCard(
	ctx context.Context,
	transactionID string,
	correlationID *uuid.UUID,
	cardID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}

	switch err := s.cards.Disable(ctx, cardID); {
	case err == nil:
	case errors.Is(err, store.ErrAlreadyDisabled):
		log.Debug("card already disabled", slog.String("card_id", cardID.String()))
		return nil
	default:
		return err
	}

	log.Info("disabled card",
		slog.String("card_id", cardID.String()),
		slog.String("transaction_id", transactionID))

	s.emitCardDisabled(ctx, transactionID, correlationID, cardID, card.DeckID)
	return nil
}

// ReviewCard applies a graded review to the card's scheduler.
// Returns store.ErrCardNotFound if the card is unknown and
// ErrCardAlreadyDisabled if it has been disabled.
func (s *CardService) ReviewCard(
	ctx context.Context,
	cardID uuid.UUID,
	action scheduler.ReviewAction,
) (*domain.Card, error) {
	return s.updateCard(ctx, cardID, func(card *domain.Card) error {
		return card.Review(action, time.Now())
	})
}

// ResetScheduler force-returns the card's scheduler to the new state with
// the preset minimum interval.
func (s *CardService) ResetScheduler(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	return s.updateCard(ctx, cardID, func(card *domain.Card) error {
		card.ResetScheduler(time.Now())
		return nil
	})
}

// GraduateCard force-promotes the card's scheduler to the graduated state
// with the preset maximum interval.
func (s *CardService) GraduateCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	return s.updateCard(ctx, cardID, func(card *domain.Card) error {
		card.GraduateCard(time.Now())
		return nil
	})
}

// ReplaceSchedulerPreset swaps the card's scheduling policy without
// altering its current state or interval.
func (s *CardService) ReplaceSchedulerPreset(
	ctx context.Context,
	cardID, presetID uuid.UUID,
) (*domain.Card, error) {
	preset, err := s.presets.GetByID(ctx, presetID)
	if err != nil {
		return nil, err
	}
	return s.updateCard(ctx, cardID, func(card *domain.Card) error {
		return card.ReplaceSchedulerPreset(preset)
	})
}

// updateCard loads an active card, applies fn and saves the result as one
// unit of work.
func (s *CardService) updateCard(
	ctx context.Context,
	cardID uuid.UUID,
	fn func(card *domain.Card) error,
) (*domain.Card, error) {
	var card *domain.Card
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		card, err = s.cards.GetByID(ctx, cardID)
		if err != nil {
			return err
		}
		if !card.Status.IsActive() {
			return ErrCardAlreadyDisabled
		}
		if err := fn(card); err != nil {
			return err
		}
		return s.cards.Save(ctx, card)
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// emitCardCreated publishes the card-created event. Emission failure does
// not fail the operation.
func (s *CardService) emitCardCreated(
	ctx context.Context,
	transactionID string,
	correlationID *uuid.UUID,
	card *domain.Card,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewCardCreated(transactionID, correlationID, events.CardCreatedPayload{
		CardID: card.ID,
		DeckID: card.DeckID,
	})
	if err == nil {
		err = s.emitter.Emit(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit card-created event",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
	}
}

// emitCardDisabled publishes the card-disabled event.
func (s *CardService) emitCardDisabled(
	ctx context.Context,
	transactionID string,
	correlationID *uuid.UUID,
	cardID, deckID uuid.UUID,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewCardDisabled(transactionID, correlationID, events.CardDisabledPayload{
		CardID: cardID,
		DeckID: deckID,
	})
	if err == nil {
		err = s.emitter.Emit(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit card-disabled event",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
	}
}
