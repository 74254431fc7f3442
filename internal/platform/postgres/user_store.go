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

// UserStore implements store.UserStore using a PostgreSQL database as the
// storage backend.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a PostgreSQL implementation of the UserStore
// interface. It accepts a database connection that should be initialized
// and managed by the caller.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

var _ store.UserStore = (*UserStore)(nil)

// Save implements store.UserStore.Save as an upsert keyed by ID.
func (s *UserStore) Save(ctx context.Context, user *domain.User) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (id, username, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at`,
		user.ID, user.Username, user.Status, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, username, status, created_at, updated_at
		FROM users
		WHERE id = $1`, id).
		Scan(&user.ID, &user.Username, &user.Status, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// DeleteAll implements store.UserStore.DeleteAll.
func (s *UserStore) DeleteAll(ctx context.Context) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `DELETE FROM users`)
	if err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}
