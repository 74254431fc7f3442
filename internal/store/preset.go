package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain/scheduler"
)

// PresetStore defines the interface for scheduler-preset persistence.
// Presets are write-once: replacing a deck's preset stores a new preset
// rather than mutating a shared one.
type PresetStore interface {
	// Save inserts a preset. Returns ErrDuplicate if a preset with the same
	// ID already exists.
	Save(ctx context.Context, preset scheduler.Preset) error

	// GetByID retrieves a preset by ID.
	// Returns ErrPresetNotFound if the preset does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (scheduler.Preset, error)

	// GetByName retrieves a preset by its unique name.
	// Returns ErrPresetNotFound if no such preset exists.
	GetByName(ctx context.Context, name string) (scheduler.Preset, error)

	// DeleteAll removes every preset. Test support only.
	DeleteAll(ctx context.Context) error
}
