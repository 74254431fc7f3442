package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
)

// UserStore defines the interface for user-projection persistence.
type UserStore interface {
	// Save inserts or updates a user projection.
	Save(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// DeleteAll removes every user. Test support only.
	DeleteAll(ctx context.Context) error
}
