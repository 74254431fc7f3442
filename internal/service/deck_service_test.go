package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/deck-service/internal/domain"
	"github.com/phrazzld/deck-service/internal/domain/scheduler"
	"github.com/phrazzld/deck-service/internal/events"
	"github.com/phrazzld/deck-service/internal/store"
	"github.com/phrazzld/deck-service/internal/store/memstore"
)

// fixture wires the services over a fresh in-memory store with a recording
// emitter.
type fixture struct {
	mem      *memstore.Store
	recorder *events.Recorder
	users    *UserService
	decks    *DeckService
	cards    *CardService
}

func newFixture(t *testing.T, opts ...DeckServiceOption) *fixture {
	t.Helper()
	mem := memstore.New()
	recorder := &events.Recorder{}
	return &fixture{
		mem:      mem,
		recorder: recorder,
		users:    NewUserService(mem.Users(), nil),
		decks: NewDeckService(
			mem.Decks(), mem.Cards(), mem.Users(), mem.Presets(),
			mem, recorder, nil, opts...),
		cards: NewCardService(
			mem.Cards(), mem.Decks(), mem.Presets(), mem, recorder, nil),
	}
}

// seedUser projects an active user into the store.
func (f *fixture) seedUser(t *testing.T) *domain.User {
	t.Helper()
	user, err := f.users.SyncExternallyCreatedUser(context.Background(), uuid.New(), "dadepu")
	require.NoError(t, err)
	return user
}

// seedDeck creates a deck for the user and clears the recorder.
func (f *fixture) seedDeck(t *testing.T, userID uuid.UUID) *domain.Deck {
	t.Helper()
	deck, err := f.decks.CreateDeck(context.Background(), newTx(), nil, userID, "test deck")
	require.NoError(t, err)
	f.recorder.Reset()
	return deck
}

func newTx() string {
	return uuid.New().String()
}

func requireSingleEvent(t *testing.T, recorder *events.Recorder, name string) events.Event {
	t.Helper()
	recorded := recorder.Events()
	require.Len(t, recorded, 1)
	require.Equal(t, name, recorded[0].Name)
	return recorded[0]
}

func TestCreateDeck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t)

	txID := newTx()
	correlation := uuid.MustParse(txID)
	deck, err := f.decks.CreateDeck(ctx, txID, &correlation, user.ID, "European Capitals")
	require.NoError(t, err)

	assert.Equal(t, user.ID, deck.UserID)
	assert.Equal(t, domain.StatusActive, deck.Status)

	// The deck embeds the shared default preset.
	preset, err := f.mem.Presets().GetByID(ctx, deck.PresetID)
	require.NoError(t, err)
	assert.Equal(t, "default", preset.Name)

	event := requireSingleEvent(t, f.recorder, events.NameDeckCreated)
	assert.Equal(t, txID, event.TransactionID)
	require.NotNil(t, event.CorrelationID)
	assert.Equal(t, correlation, *event.CorrelationID)

	var payload events.DeckCreatedPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, deck.ID, payload.DeckID)
	assert.Equal(t, user.ID, payload.UserID)
	assert.Equal(t, "European Capitals", payload.DeckName)
}

func TestCreateDeckReusesDefaultPreset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t)

	first, err := f.decks.CreateDeck(ctx, newTx(), nil, user.ID, "first")
	require.NoError(t, err)
	second, err := f.decks.CreateDeck(ctx, newTx(), nil, user.ID, "second")
	require.NoError(t, err)

	assert.Equal(t, first.PresetID, second.PresetID)
}

func TestCreateDeckUnknownUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.decks.CreateDeck(context.Background(), newTx(), nil, uuid.New(), "deck")
	require.ErrorIs(t, err, store.ErrUserNotFound)
	assert.Empty(t, f.recorder.Events(), "no event on failure")
}

func TestCreateDeckDisabledUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t)
	require.NoError(t, f.users.DisableUser(ctx, user.ID))

	_, err := f.decks.CreateDeck(ctx, newTx(), nil, user.ID, "deck")
	require.ErrorIs(t, err, ErrUserNotActive)
	assert.Empty(t, f.recorder.Events())
}

func TestCreateDeckInvalidName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := f.seedUser(t)

	_, err := f.decks.CreateDeck(context.Background(), newTx(), nil, user.ID, "")
	require.ErrorIs(t, err, domain.ErrInvalidDeckName)
	assert.Empty(t, f.recorder.Events())
}

func TestCloneDeckCopiesOnlyActiveCards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t)
	source := f.seedDeck(t, user.ID)

	kept, err := f.cards.CreateCard(ctx, newTx(), nil, source.ID, &domain.CardContent{
		Front: domain.View{domain.TextElement("kept")},
	})
	require.NoError(t, err)
	dropped, err := f.cards.CreateCard(ctx, newTx(), nil, source.ID, &domain.CardContent{
		Front: domain.View{domain.TextElement("dropped")},
	})
	require.NoError(t, err)
	require.NoError(t, f.cards.DisableCard(ctx, newTx(), nil, dropped.ID))
	f.recorder.Reset()

	clone, err := f.decks.CloneDeck(ctx, newTx(), nil, source.ID, user.ID, "source (copy)")
	require.NoError(t, err)

	assert.Equal(t, source.PresetID, clone.PresetID)

	cloned, err := f.mem.Cards().FindByDeckID(ctx, clone.ID, "")
	require.NoError(t, err)
	require.Len(t, cloned, 1, "only active cards are cloned")
	assert.Equal(t, "kept", cloned[0].Content.Front[0].Text)
	assert.Nil(t, cloned[0].ParentID, "clones carry no lineage")
	assert.NotEqual(t, kept.ID, cloned[0].ID)
	assert.Equal(t, scheduler.StateNew, cloned[0].Scheduler.State)

	// Cloning the deck announces only the new deck; card-level events stay
	// internal to the operation.
	requireSingleEvent(t, f.recorder, events.NameDeckCreated)
}

func TestCloneDeckUnknownSource(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := f.seedUser(t)

	_, err := f.decks.CloneDeck(context.Background(), newTx(), nil, uuid.New(), user.ID, "copy")
	require.ErrorIs(t, err, store.ErrDeckNotFound)
	assert.Empty(t, f.recorder.Events())
}

func TestCloneDeckRollsBackAtomically(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t)
	source := f.seedDeck(t, user.ID)
	require.NoError(t, f.users.DisableUser(ctx, user.ID))

	before, err := f.mem.Decks().FindByUserID(ctx, user.ID)
	require.NoError(t, err)

	_, err = f.decks.CloneDeck(ctx, newTx(), nil, source.ID, user.ID, "copy")
	require.ErrorIs(t, err, ErrUserNotActive)

	after, err := f.mem.Decks().FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, after, len(before), "failed clone leaves no partial deck behind")
}

func TestDisableDeck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t)
	deck := f.seedDeck(t, user.ID)

	txID := newTx()
	require.NoError(t, f.decks.DisableDeck(ctx, txID, nil, deck.ID))

	got, err := f.mem.Decks().GetByID(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisabled, got.Status)

	event := requireSingleEvent(t, f.recorder, events.NameDeckDisabled)
	var payload events.DeckDisabledPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, deck.ID, payload.DeckID)
	assert.Equal(t, user.ID, payload.UserID)
}

func TestDisableDeckIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t)
	deck := f.seedDeck(t, user.ID)

	require.NoError(t, f.decks.DisableDeck(ctx, newTx(), nil, deck.ID))
	f.recorder.Reset()

	// Second disable succeeds but announces nothing.
	require.NoError(t, f.decks.DisableDeck(ctx, newTx(), nil, deck.ID))
	assert.Empty(t, f.recorder.Events())
}

func TestDisableDeckUnknown(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.decks.DisableDeck(context.Background(), newTx(), nil, uuid.New())
	require.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestDisableDeckDoesNotCascadeByDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t)
	deck := f.seedDeck(t, user.ID)

	card, err := f.cards.CreateCard(ctx, newTx(), nil, deck.ID, nil)
	require.NoError(t, err)
	f.recorder.Reset()

	require.NoError(t, f.decks.DisableDeck(ctx, newTx(), nil, deck.ID))

	got, err := f.mem.Cards().GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
}

func TestDisableDeckCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, WithCascadeDisable(true))
	user := f.seedUser(t)
	deck := f.seedDeck(t, user.ID)

	card, err := f.cards.CreateCard(ctx, newTx(), nil, deck.ID, nil)
	require.NoError(t, err)
	f.recorder.Reset()

	require.NoError(t, f.decks.DisableDeck(ctx, newTx(), nil, deck.ID))

	got, err := f.mem.Cards().GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisabled, got.Status)
}

func TestRenameDeck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t)
	deck := f.seedDeck(t, user.ID)

	renamed, err := f.decks.RenameDeck(ctx, deck.ID, "better name")
	require.NoError(t, err)
	assert.Equal(t, "better name", renamed.Name)

	got, err := f.mem.Decks().GetByID(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, "better name", got.Name)
}

func TestChangePreset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t)
	deck := f.seedDeck(t, user.ID)

	// A card created before the preset change keeps its embedded preset.
	before, err := f.cards.CreateCard(ctx, newTx(), nil, deck.ID, nil)
	require.NoError(t, err)

	replacement := scheduler.DefaultPreset()
	replacement.Name = "aggressive"
	require.NoError(t, f.mem.Presets().Save(ctx, replacement))

	require.NoError(t, f.decks.ChangePreset(ctx, deck.ID, replacement.ID))

	after, err := f.cards.CreateCard(ctx, newTx(), nil, deck.ID, nil)
	require.NoError(t, err)

	assert.NotEqual(t, replacement.ID, before.Scheduler.Preset.ID)
	assert.Equal(t, replacement.ID, after.Scheduler.Preset.ID)

	require.ErrorIs(t,
		f.decks.ChangePreset(ctx, deck.ID, uuid.New()), store.ErrPresetNotFound)
}

func TestUserServiceSyncIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	id := uuid.New()
	_, err := f.users.SyncExternallyCreatedUser(ctx, id, "dadepu")
	require.NoError(t, err)
	_, err = f.users.SyncExternallyCreatedUser(ctx, id, "dadepu")
	require.NoError(t, err)

	user, err := f.mem.Users().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "dadepu", user.Username)
}

func TestUserServiceRenameAndDisable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t)

	require.NoError(t, f.users.RenameUser(ctx, user.ID, "dadepu2"))
	got, err := f.mem.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "dadepu2", got.Username)

	require.NoError(t, f.users.DisableUser(ctx, user.ID))
	require.NoError(t, f.users.DisableUser(ctx, user.ID), "disable is idempotent")

	require.ErrorIs(t, f.users.RenameUser(ctx, uuid.New(), "ghost"), store.ErrUserNotFound)
}
