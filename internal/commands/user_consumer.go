package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain"
	"github.com/phrazzld/deck-service/internal/events"
	"github.com/phrazzld/deck-service/internal/platform/logger"
)

// Event names consumed from the users change-data topic.
const (
	NameUserCreated  = "user-created"
	NameUserRenamed  = "user-renamed"
	NameUserDisabled = "user-disabled"
)

// UserCreatedPayload announces a user created in the user context.
type UserCreatedPayload struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
}

// UserRenamedPayload announces a username change.
type UserRenamedPayload struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
}

// UserDisabledPayload announces a user disabled in the user context.
type UserDisabledPayload struct {
	UserID uuid.UUID `json:"userId"`
}

// UserOperations is the user-projection surface the consumer drives.
type UserOperations interface {
	SyncExternallyCreatedUser(ctx context.Context, userID uuid.UUID, username string) (*domain.User, error)
	RenameUser(ctx context.Context, userID uuid.UUID, username string) error
	DisableUser(ctx context.Context, userID uuid.UUID) error
}

// UserEventConsumer applies user change-data events to the local user
// projection, which gates deck and card creation.
type UserEventConsumer struct {
	users  UserOperations
	logger *slog.Logger
}

// NewUserEventConsumer creates a UserEventConsumer.
func NewUserEventConsumer(users UserOperations, log *slog.Logger) *UserEventConsumer {
	if log == nil {
		log = slog.Default()
	}
	return &UserEventConsumer{
		users:  users,
		logger: log.With(slog.String("component", "user_event_consumer")),
	}
}

var _ events.Handler = (*UserEventConsumer)(nil)

// HandleEvent implements events.Handler for the users change-data topic.
// Unknown event types are logged and dropped.
func (c *UserEventConsumer) HandleEvent(ctx context.Context, event events.Event) error {
	log := logger.FromContextOrDefault(ctx, c.logger).With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Name))
	ctx = logger.WithLogger(ctx, log)

	switch event.Name {
	case NameUserCreated:
		var payload UserCreatedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			log.Error("discarding user event with malformed payload",
				slog.String("error", err.Error()))
			return nil
		}
		_, err := c.users.SyncExternallyCreatedUser(ctx, payload.UserID, payload.Username)
		return err

	case NameUserRenamed:
		var payload UserRenamedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			log.Error("discarding user event with malformed payload",
				slog.String("error", err.Error()))
			return nil
		}
		return c.users.RenameUser(ctx, payload.UserID, payload.Username)

	case NameUserDisabled:
		var payload UserDisabledPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			log.Error("discarding user event with malformed payload",
				slog.String("error", err.Error()))
			return nil
		}
		return c.users.DisableUser(ctx, payload.UserID)

	default:
		log.Warn("received user event of unknown type, dropping")
		return nil
	}
}
