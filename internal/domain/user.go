package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// usernamePattern mirrors the rules of the external user context: word
// characters only, 4 to 16 of them.
var usernamePattern = regexp.MustCompile(`^\w{4,16}$`)

// User is a local projection of a user owned by an external bounded context.
// Users enter this service exclusively through user-created events on the
// users change-data topic and are referenced by ID from decks.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a local user projection from an externally assigned ID
// and username. Returns an error if either fails validation.
func NewUser(id uuid.UUID, username string) (*User, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID cannot be nil", ErrInvalidID)
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &User{
		ID:        id,
		Username:  username,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateUsername checks a username against the external context's rules.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: %q must be 4-16 word characters", ErrInvalidUsername, username)
	}
	return nil
}

// Rename changes the username. The external context validates renames
// before publishing them, but the projection re-checks locally.
func (u *User) Rename(username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	u.Username = username
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// Disable marks the user projection as disabled. Idempotent.
func (u *User) Disable() {
	u.Status = u.Status.Disable()
	u.UpdatedAt = time.Now().UTC()
}
