package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
	"github.com/phrazzld/deck-service/internal/platform/logger"
	"github.com/phrazzld/deck-service/internal/store"
)

// UserService maintains the local projection of externally owned users.
// It is driven exclusively by change-data events from the user context;
// nothing in this service creates users of its own accord.
type UserService struct {
	users  store.UserStore
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		users:  users,
		logger: log.With(slog.String("component", "user_service")),
	}
}

// SyncExternallyCreatedUser records a user announced by the user context.
// Re-delivery of the same event overwrites the projection with identical
// data, so the operation is safe under at-least-once delivery.
func (s *UserService) SyncExternallyCreatedUser(
	ctx context.Context,
	userID uuid.UUID,
	username string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(userID, username)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	log.Info("synced externally created user",
		slog.String("user_id", userID.String()),
		slog.String("username", username))
	return user, nil
}

// RenameUser applies an externally announced username change.
// Returns store.ErrUserNotFound if the projection is missing.
func (s *UserService) RenameUser(ctx context.Context, userID uuid.UUID, username string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.Rename(username); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}

// DisableUser retires the local projection of a user disabled in the user
// context. Idempotent: disabling an already-disabled user is a no-op.
func (s *UserService) DisableUser(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Status.IsActive() {
		log.Debug("user already disabled", slog.String("user_id", userID.String()))
		return nil
	}
	user.Disable()
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	log.Info("disabled user projection", slog.String("user_id", userID.String()))
	return nil
}
