package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/deck-service/internal/domain/scheduler"
	"github.com/phrazzld/deck-service/internal/store"
)

// PresetStore implements store.PresetStore using a PostgreSQL database as
// the storage backend. The preset parameters live in a single JSONB column;
// ID and name are lifted into their own columns for lookups and the unique
// name constraint.
type PresetStore struct {
	db *sql.DB
}

// NewPresetStore creates a PostgreSQL implementation of the PresetStore
// interface.
func NewPresetStore(db *sql.DB) *PresetStore {
	return &PresetStore{db: db}
}

var _ store.PresetStore = (*PresetStore)(nil)

// Save implements store.PresetStore.Save. Presets are write-once, so a
// conflicting ID is an error rather than an update.
func (s *PresetStore) Save(ctx context.Context, preset scheduler.Preset) error {
	params, err := json.Marshal(preset)
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	_, err = conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO scheduler_presets (id, name, params)
		VALUES ($1, $2, $3)`,
		preset.ID, preset.Name, params)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to save preset: %w", err)
	}
	return nil
}

// GetByID implements store.PresetStore.GetByID.
func (s *PresetStore) GetByID(ctx context.Context, id uuid.UUID) (scheduler.Preset, error) {
	return s.get(ctx, `SELECT params FROM scheduler_presets WHERE id = $1`, id)
}

// GetByName implements store.PresetStore.GetByName.
func (s *PresetStore) GetByName(ctx context.Context, name string) (scheduler.Preset, error) {
	return s.get(ctx, `SELECT params FROM scheduler_presets WHERE name = $1`, name)
}

func (s *PresetStore) get(ctx context.Context, query string, arg any) (scheduler.Preset, error) {
	var params []byte
	err := conn(ctx, s.db).QueryRowContext(ctx, query, arg).Scan(&params)
	if errors.Is(err, sql.ErrNoRows) {
		return scheduler.Preset{}, store.ErrPresetNotFound
	}
	if err != nil {
		return scheduler.Preset{}, fmt.Errorf("failed to get preset: %w", err)
	}

	var preset scheduler.Preset
	if err := json.Unmarshal(params, &preset); err != nil {
		return scheduler.Preset{}, fmt.Errorf("failed to unmarshal preset: %w", err)
	}
	return preset, nil
}

// DeleteAll implements store.PresetStore.DeleteAll.
func (s *PresetStore) DeleteAll(ctx context.Context) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `DELETE FROM scheduler_presets`)
	if err != nil {
		return fmt.Errorf("failed to delete presets: %w", err)
	}
	return nil
}
