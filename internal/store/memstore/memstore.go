// Package memstore provides an in-memory implementation of the store
// interfaces. It backs service and dispatcher tests and the
// database.driver=memory development mode. A single mutex serializes units
// of work; transactions are implemented as state snapshots restored on
// error, which gives the same atomicity guarantees the SQL stores get from
// ROLLBACK.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
	"github.com/phrazzld/deck-service/internal/domain/scheduler"
	"github.com/phrazzld/deck-service/internal/store"
)

// Store holds all in-memory state. Per-entity views are exposed through
// Users, Decks, Cards and Presets; the Store itself is the Transactor.
type Store struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*domain.User
	decks   map[uuid.UUID]*domain.Deck
	cards   map[uuid.UUID]*domain.Card
	presets map[uuid.UUID]scheduler.Preset
}

// txMarker marks a context as running inside this store's transaction, so
// store calls made within the unit of work must not re-acquire the mutex.
type txMarker struct{}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:   make(map[uuid.UUID]*domain.User),
		decks:   make(map[uuid.UUID]*domain.Deck),
		cards:   make(map[uuid.UUID]*domain.Card),
		presets: make(map[uuid.UUID]scheduler.Preset),
	}
}

var _ store.Transactor = (*Store)(nil)

// Users returns the store.UserStore view of the store.
func (s *Store) Users() store.UserStore { return &userStore{s} }

// Decks returns the store.DeckStore view of the store.
func (s *Store) Decks() store.DeckStore { return &deckStore{s} }

// Cards returns the store.CardStore view of the store.
func (s *Store) Cards() store.CardStore { return &cardStore{s} }

// Presets returns the store.PresetStore view of the store.
func (s *Store) Presets() store.PresetStore { return &presetStore{s} }

// lock acquires the store mutex unless the context marks an enclosing
// transaction that already holds it.
func (s *Store) lock(ctx context.Context) func() {
	if owner, ok := ctx.Value(txMarker{}).(*Store); ok && owner == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// InTransaction implements store.Transactor. The whole unit of work runs
// under the store mutex; on error the pre-transaction snapshot is restored.
func (s *Store) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	err := fn(context.WithValue(ctx, txMarker{}, s))
	if err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type snapshotState struct {
	users   map[uuid.UUID]*domain.User
	decks   map[uuid.UUID]*domain.Deck
	cards   map[uuid.UUID]*domain.Card
	presets map[uuid.UUID]scheduler.Preset
}

func (s *Store) snapshot() snapshotState {
	snap := snapshotState{
		users:   make(map[uuid.UUID]*domain.User, len(s.users)),
		decks:   make(map[uuid.UUID]*domain.Deck, len(s.decks)),
		cards:   make(map[uuid.UUID]*domain.Card, len(s.cards)),
		presets: make(map[uuid.UUID]scheduler.Preset, len(s.presets)),
	}
	for id, u := range s.users {
		snap.users[id] = copyUser(u)
	}
	for id, d := range s.decks {
		snap.decks[id] = copyDeck(d)
	}
	for id, c := range s.cards {
		snap.cards[id] = copyCard(c)
	}
	for id, p := range s.presets {
		snap.presets[id] = p
	}
	return snap
}

func (s *Store) restore(snap snapshotState) {
	s.users = snap.users
	s.decks = snap.decks
	s.cards = snap.cards
	s.presets = snap.presets
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyDeck(d *domain.Deck) *domain.Deck {
	c := *d
	return &c
}

func copyCard(card *domain.Card) *domain.Card {
	c := *card
	if card.ParentID != nil {
		parentID := *card.ParentID
		c.ParentID = &parentID
	}
	c.Content = card.Content.Clone()
	c.Scheduler.Preset.LearningSteps = append(
		[]time.Duration(nil), card.Scheduler.Preset.LearningSteps...)
	return &c
}

// --- store.UserStore ---

type userStore struct{ s *Store }

var _ store.UserStore = (*userStore)(nil)

func (u *userStore) Save(ctx context.Context, user *domain.User) error {
	unlock := u.s.lock(ctx)
	defer unlock()
	u.s.users[user.ID] = copyUser(user)
	return nil
}

func (u *userStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	unlock := u.s.lock(ctx)
	defer unlock()
	usr, ok := u.s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(usr), nil
}

func (u *userStore) DeleteAll(ctx context.Context) error {
	unlock := u.s.lock(ctx)
	defer unlock()
	u.s.users = make(map[uuid.UUID]*domain.User)
	return nil
}

// --- store.DeckStore ---

type deckStore struct{ s *Store }

var _ store.DeckStore = (*deckStore)(nil)

func (d *deckStore) Save(ctx context.Context, deck *domain.Deck) error {
	unlock := d.s.lock(ctx)
	defer unlock()
	d.s.decks[deck.ID] = copyDeck(deck)
	return nil
}

func (d *deckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	unlock := d.s.lock(ctx)
	defer unlock()
	deck, ok := d.s.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return copyDeck(deck), nil
}

func (d *deckStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error) {
	unlock := d.s.lock(ctx)
	defer unlock()
	var decks []*domain.Deck
	for _, deck := range d.s.decks {
		if deck.UserID == userID {
			decks = append(decks, copyDeck(deck))
		}
	}
	sortDecks(decks)
	return decks, nil
}

func (d *deckStore) Disable(ctx context.Context, id uuid.UUID) error {
	unlock := d.s.lock(ctx)
	defer unlock()
	deck, ok := d.s.decks[id]
	if !ok {
		return store.ErrDeckNotFound
	}
	if !deck.Status.IsActive() {
		return store.ErrAlreadyDisabled
	}
	deck.Disable()
	return nil
}

func (d *deckStore) DeleteAll(ctx context.Context) error {
	unlock := d.s.lock(ctx)
	defer unlock()
	d.s.decks = make(map[uuid.UUID]*domain.Deck)
	return nil
}

// --- store.CardStore ---

type cardStore struct{ s *Store }

var _ store.CardStore = (*cardStore)(nil)

func (c *cardStore) Save(ctx context.Context, card *domain.Card) error {
	unlock := c.s.lock(ctx)
	defer unlock()
	c.s.cards[card.ID] = copyCard(card)
	return nil
}

func (c *cardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	unlock := c.s.lock(ctx)
	defer unlock()
	card, ok := c.s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return copyCard(card), nil
}

func (c *cardStore) FindByDeckID(
	ctx context.Context,
	deckID uuid.UUID,
	status domain.Status,
) ([]*domain.Card, error) {
	unlock := c.s.lock(ctx)
	defer unlock()
	var cards []*domain.Card
	for _, card := range c.s.cards {
		if card.DeckID != deckID {
			continue
		}
		if status != "" && card.Status != status {
			continue
		}
		cards = append(cards, copyCard(card))
	}
	sortCards(cards)
	return cards, nil
}

func (c *cardStore) Disable(ctx context.Context, id uuid.UUID) error {
	unlock := c.s.lock(ctx)
	defer unlock()
	card, ok := c.s.cards[id]
	if !ok {
		return store.ErrCardNotFound
	}
	if !card.Status.IsActive() {
		return store.ErrAlreadyDisabled
	}
	card.Disable()
	return nil
}

func (c *cardStore) DeleteAll(ctx context.Context) error {
	unlock := c.s.lock(ctx)
	defer unlock()
	c.s.cards = make(map[uuid.UUID]*domain.Card)
	return nil
}

// --- store.PresetStore ---

type presetStore struct{ s *Store }

var _ store.PresetStore = (*presetStore)(nil)

func (p *presetStore) Save(ctx context.Context, preset scheduler.Preset) error {
	unlock := p.s.lock(ctx)
	defer unlock()
	if _, exists := p.s.presets[preset.ID]; exists {
		return store.ErrDuplicate
	}
	// Names are unique too, matching the SQL schema.
	for _, existing := range p.s.presets {
		if existing.Name == preset.Name {
			return store.ErrDuplicate
		}
	}
	p.s.presets[preset.ID] = preset
	return nil
}

func (p *presetStore) GetByID(ctx context.Context, id uuid.UUID) (scheduler.Preset, error) {
	unlock := p.s.lock(ctx)
	defer unlock()
	preset, ok := p.s.presets[id]
	if !ok {
		return scheduler.Preset{}, store.ErrPresetNotFound
	}
	return preset, nil
}

func (p *presetStore) GetByName(ctx context.Context, name string) (scheduler.Preset, error) {
	unlock := p.s.lock(ctx)
	defer unlock()
	for _, preset := range p.s.presets {
		if preset.Name == name {
			return preset, nil
		}
	}
	return scheduler.Preset{}, store.ErrPresetNotFound
}

func (p *presetStore) DeleteAll(ctx context.Context) error {
	unlock := p.s.lock(ctx)
	defer unlock()
	p.s.presets = make(map[uuid.UUID]scheduler.Preset)
	return nil
}

func sortDecks(decks []*domain.Deck) {
	sort.Slice(decks, func(i, j int) bool {
		if !decks[i].CreatedAt.Equal(decks[j].CreatedAt) {
			return decks[i].CreatedAt.After(decks[j].CreatedAt)
		}
		return decks[i].ID.String() < decks[j].ID.String()
	})
}

func sortCards(cards []*domain.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
		return cards[i].ID.String() < cards[j].ID.String()
	})
}
