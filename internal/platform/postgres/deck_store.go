package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
	"github.com/phrazzld/deck-service/internal/store"
)

// DeckStore implements store.DeckStore using a PostgreSQL database as the
// storage backend.
type DeckStore struct {
	db *sql.DB
}

// NewDeckStore creates a PostgreSQL implementation of the DeckStore
// interface.
func NewDeckStore(db *sql.DB) *DeckStore {
	return &DeckStore{db: db}
}

var _ store.DeckStore = (*DeckStore)(nil)

// Save implements store.DeckStore.Save as an upsert keyed by ID.
func (s *DeckStore) Save(ctx context.Context, deck *domain.Deck) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO decks (id, name, user_id, preset_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    preset_id = EXCLUDED.preset_id,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at`,
		deck.ID, deck.Name, deck.UserID, deck.PresetID, deck.Status,
		deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save deck: %w", err)
	}
	return nil
}

// GetByID implements store.DeckStore.GetByID.
func (s *DeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	var deck domain.Deck
	err := conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name, user_id, preset_id, status, created_at, updated_at
		FROM decks
		WHERE id = $1`, id).
		Scan(&deck.ID, &deck.Name, &deck.UserID, &deck.PresetID, &deck.Status,
			&deck.CreatedAt, &deck.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrDeckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return &deck, nil
}

// FindByUserID implements store.DeckStore.FindByUserID, newest first.
func (s *DeckStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error) {
	rows, err := conn(ctx, s.db).QueryContext(ctx, `
		SELECT id, name, user_id, preset_id, status, created_at, updated_at
		FROM decks
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*domain.Deck
	for rows.Next() {
		var deck domain.Deck
		if err := rows.Scan(&deck.ID, &deck.Name, &deck.UserID, &deck.PresetID,
			&deck.Status, &deck.CreatedAt, &deck.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, &deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decks: %w", err)
	}
	return decks, nil
}

// Disable implements store.DeckStore.Disable. The status predicate makes
// the update conditional so concurrent disables resolve to exactly one
// winner.
func (s *DeckStore) Disable(ctx context.Context, id uuid.UUID) error {
	res, err := conn(ctx, s.db).ExecContext(ctx, `
		UPDATE decks
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		domain.StatusDisabled, id, domain.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to disable deck: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check disable result: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing deck from a lost race.
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return store.ErrAlreadyDisabled
	}
	return nil
}

// DeleteAll implements store.DeckStore.DeleteAll.
func (s *DeckStore) DeleteAll(ctx context.Context) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `DELETE FROM decks`)
	if err != nil {
		return fmt.Errorf("failed to delete decks: %w", err)
	}
	return nil
}
