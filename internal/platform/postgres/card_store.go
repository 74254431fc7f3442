package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
	"github.com/phrazzld/deck-service/internal/domain/scheduler"
	"github.com/phrazzld/deck-service/internal/store"
)

// CardStore implements store.CardStore using a PostgreSQL database as the
// storage backend. Content and scheduler state are stored as JSONB columns
// so the row shape stays stable as card variants and preset parameters
// evolve.
type CardStore struct {
	db *sql.DB
}

// NewCardStore creates a PostgreSQL implementation of the CardStore
// interface.
func NewCardStore(db *sql.DB) *CardStore {
	return &CardStore{db: db}
}

var _ store.CardStore = (*CardStore)(nil)

// Save implements store.CardStore.Save as an upsert keyed by ID.
func (s *CardStore) Save(ctx context.Context, card *domain.Card) error {
	content, err := domain.MarshalContent(card.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal card content: %w", err)
	}
	sched, err := json.Marshal(card.Scheduler)
	if err != nil {
		return fmt.Errorf("failed to marshal card scheduler: %w", err)
	}

	_, err = conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO cards (id, deck_id, parent_card_id, kind, content, scheduler, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
		    scheduler = EXCLUDED.scheduler,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at`,
		card.ID, card.DeckID, card.ParentID, card.Kind, content, sched,
		card.Status, card.CreatedAt, card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, deck_id, parent_card_id, kind, content, scheduler, status, created_at, updated_at
		FROM cards
		WHERE id = $1`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

// FindByDeckID implements store.CardStore.FindByDeckID, oldest first. An
// empty status returns cards in every status.
func (s *CardStore) FindByDeckID(ctx context.Context, deckID uuid.UUID, status domain.Status) ([]*domain.Card, error) {
	query := `
		SELECT id, deck_id, parent_card_id, kind, content, scheduler, status, created_at, updated_at
		FROM cards
		WHERE deck_id = $1`
	args := []any{deckID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return cards, nil
}

// Disable implements store.CardStore.Disable. The status predicate is the
// single-writer guard for same-card override races: of two concurrent
// overrides, exactly one update matches the active row.
func (s *CardStore) Disable(ctx context.Context, id uuid.UUID) error {
	res, err := conn(ctx, s.db).ExecContext(ctx, `
		UPDATE cards
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		domain.StatusDisabled, id, domain.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to disable card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check disable result: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return store.ErrAlreadyDisabled
	}
	return nil
}

// DeleteAll implements store.CardStore.DeleteAll.
func (s *CardStore) DeleteAll(ctx context.Context) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `DELETE FROM cards`)
	if err != nil {
		return fmt.Errorf("failed to delete cards: %w", err)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card     domain.Card
		content  []byte
		schedRaw []byte
	)
	if err := row.Scan(&card.ID, &card.DeckID, &card.ParentID, &card.Kind,
		&content, &schedRaw, &card.Status, &card.CreatedAt, &card.UpdatedAt); err != nil {
		return nil, err
	}

	if len(content) > 0 {
		parsed, err := domain.UnmarshalContent(content)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal card content: %w", err)
		}
		card.Content = parsed
	}

	var sched scheduler.Scheduler
	if err := json.Unmarshal(schedRaw, &sched); err != nil {
		return nil, fmt.Errorf("failed to unmarshal card scheduler: %w", err)
	}
	card.Scheduler = sched

	return &card, nil
}
