package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
	"github.com/phrazzld/deck-service/internal/domain/scheduler"
	"github.com/phrazzld/deck-service/internal/events"
	"github.com/phrazzld/deck-service/internal/platform/logger"
	"github.com/phrazzld/deck-service/internal/store"
)

// defaultPresetName is the name of the preset assigned to decks created
// without an explicit choice.
const defaultPresetName = "default"

// DeckService implements the deck lifecycle operations: create, clone,
// disable, rename and preset changes. Multi-entity operations run inside a
// single unit of work; on success the corresponding change-data event is
// emitted with the causing transaction as its correlation.
type DeckService struct {
	decks   store.DeckStore
	cards   store.CardStore
	users   store.UserStore
	presets store.PresetStore
	tx      store.Transactor
	emitter events.Emitter
	logger  *slog.Logger

	cascadeDisable bool
}

// DeckServiceOption customizes DeckService behavior.
type DeckServiceOption func(*DeckService)

// WithCascadeDisable makes DisableDeck also disable the deck's active
// cards. Off by default: card disabling is otherwise a separate,
// caller-initiated concern.
func WithCascadeDisable(cascade bool) DeckServiceOption {
	return func(s *DeckService) {
		s.cascadeDisable = cascade
	}
}

// NewDeckService creates a DeckService.
func NewDeckService(
	decks store.DeckStore,
	cards store.CardStore,
	users store.UserStore,
	presets store.PresetStore,
	tx store.Transactor,
	emitter events.Emitter,
	log *slog.Logger,
	opts ...DeckServiceOption,
) *DeckService {
	if log == nil {
		log = slog.Default()
	}
	s := &DeckService{
		decks:   decks,
		cards:   cards,
		users:   users,
		presets: presets,
		tx:      tx,
		emitter: emitter,
		logger:  log.With(slog.String("component", "deck_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDeck creates a new active deck for the given user with the default
// scheduler preset. Returns store.ErrUserNotFound if the user is unknown
// and ErrUserNotActive if the user has been disabled.
func (s *DeckService) CreateDeck(
	ctx context.Context,
	transactionID string,
	correlationID *uuid.UUID,
	userID uuid.UUID,
	name string,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Status.IsActive() {
		return nil, ErrUserNotActive
	}

	var deck *domain.Deck
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		preset, err := s.ensureDefaultPreset(ctx)
		if err != nil {
			return err
		}
		deck, err = domain.NewDeck(userID, preset.ID, name)
		if err != nil {
			return err
		}
		return s.decks.Save(ctx, deck)
	})
	if err != nil {
		return nil, err
	}

	log.Info("created deck",
		slog.String("deck_id", deck.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("transaction_id", transactionID))

	s.emitDeckCreated(ctx, transactionID, correlationID, deck)
	return deck, nil
}

// CloneDeck creates a new deck owned by userID with newName and clones
// every currently active card of the source deck into it. The deck
// creation and all card clones form one atomic unit of work over a
// consistent snapshot of the source deck's active cards; produced cards
// carry no lineage. Returns store.ErrDeckNotFound if the source deck is
// unknown and store.ErrUserNotFound / ErrUserNotActive for the target user.
func (s *DeckService) CloneDeck(
	ctx context.Context,
	transactionID string,
	correlationID *uuid.UUID,
	sourceDeckID uuid.UUID,
	userID uuid.UUID,
	newName string,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deck *domain.Deck
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		source, err := s.decks.GetByID(ctx, sourceDeckID)
		if err != nil {
			return err
		}
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !user.Status.IsActive() {
			return ErrUserNotActive
		}
		preset, err := s.presets.GetByID(ctx, source.PresetID)
		if err != nil {
			return err
		}

		deck, err = domain.NewDeck(userID, source.PresetID, newName)
		if err != nil {
			return err
		}
		if err := s.decks.Save(ctx, deck); err != nil {
			return err
		}

		sourceCards, err := s.cards.FindByDeckID(ctx, sourceDeckID, domain.StatusActive)
		if err != nil {
			return err
		}
		for _, sourceCard := range sourceCards {
			clone, err := domain.NewClonedCard(sourceCard, deck.ID, preset)
			if err != nil {
				return err
			}
			if err := s.cards.Save(ctx, clone); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("cloned deck",
		slog.String("source_deck_id", sourceDeckID.String()),
		slog.String("deck_id", deck.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("transaction_id", transactionID))

	s.emitDeckCreated(ctx, transactionID, correlationID, deck)
	return deck, nil
}

// DisableDeck retires the deck. Idempotent: disabling an already-disabled
// deck succeeds without emitting another event. With cascade enabled, the
// deck's active cards are disabled in the same unit of work.
func (s *DeckService) DisableDeck(
	ctx context.Context,
	transactionID string,
	correlationID *uuid.UUID,
	deckID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return err
	}

	var alreadyDisabled bool
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		switch err := s.decks.Disable(ctx, deckID); {
		case err == nil:
		case errors.Is(err, store.ErrAlreadyDisabled):
			alreadyDisabled = true
			return nil
		default:
			return err
		}

		if !s.cascadeDisable {
			return nil
		}
		active, err := s.cards.FindByDeckID(ctx, deckID, domain.StatusActive)
		if err != nil {
			return err
		}
		for _, card := range active {
			if err := s.cards.Disable(ctx, card.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if alreadyDisabled {
		log.Debug("deck already disabled", slog.String("deck_id", deckID.String()))
		return nil
	}

	log.Info("disabled deck",
		slog.String("deck_id", deckID.String()),
		slog.String("transaction_id", transactionID))

	event, err := events.NewDeckDisabled(transactionID, correlationID, events.DeckDisabledPayload{
		DeckID: deckID,
		UserID: deck.UserID,
	})
	if err == nil {
		err = s.emitter.Emit(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit deck-disabled event",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
	}
	return nil
}

// RenameDeck changes the deck's name.
// Returns store.ErrDeckNotFound if the deck is unknown.
func (s *DeckService) RenameDeck(ctx context.Context, deckID uuid.UUID, name string) (*domain.Deck, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if err := deck.Rename(name); err != nil {
		return nil, err
	}
	if err := s.decks.Save(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

// ChangePreset points the deck at a different default scheduler preset.
// Metadata change only: cards already embedded with the old preset keep it.
// Returns store.ErrDeckNotFound / store.ErrPresetNotFound for unknown IDs.
func (s *DeckService) ChangePreset(ctx context.Context, deckID, presetID uuid.UUID) error {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return err
	}
	if _, err := s.presets.GetByID(ctx, presetID); err != nil {
		return err
	}
	if err := deck.ChangePreset(presetID); err != nil {
		return err
	}
	return s.decks.Save(ctx, deck)
}

// ensureDefaultPreset fetches the built-in default preset, creating and
// persisting it on first use.
func (s *DeckService) ensureDefaultPreset(ctx context.Context) (scheduler.Preset, error) {
	preset, err := s.presets.GetByName(ctx, defaultPresetName)
	if err == nil {
		return preset, nil
	}
	if !store.IsNotFoundError(err) {
		return scheduler.Preset{}, err
	}

	preset = scheduler.DefaultPreset()
	if err := preset.Validate(); err != nil {
		return scheduler.Preset{}, err
	}
	if err := s.presets.Save(ctx, preset); err != nil {
		return scheduler.Preset{}, fmt.Errorf("failed to persist default preset: %w", err)
	}
	return preset, nil
}

// emitDeckCreated publishes the deck-created event. Emission failure does
// not fail the operation: the entity is already persisted and the bus is
// at-least-once, so delivery is the transport's concern.
func (s *DeckService) emitDeckCreated(
	ctx context.Context,
	transactionID string,
	correlationID *uuid.UUID,
	deck *domain.Deck,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewDeckCreated(transactionID, correlationID, events.DeckCreatedPayload{
		DeckID:   deck.ID,
		UserID:   deck.UserID,
		DeckName: deck.Name,
	})
	if err == nil {
		err = s.emitter.Emit(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit deck-created event",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
	}
}
