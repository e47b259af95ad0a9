package repositories

import (
	"database/sql"
	"fmt"

	"github.com/cantus/hymnal/internal/models"
	"github.com/cantus/hymnal/internal/shared"
)

// PreferencesRepository persists the display settings singleton.
type PreferencesRepository struct {
	db *sql.DB
}

// NewPreferencesRepository creates a new PreferencesRepository with the given database connection
func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get returns the stored preferences, falling back to defaults when no row
// has been written yet.
func (r *PreferencesRepository) Get() (models.Preferences, error) {
	var prefs models.Preferences

	err := r.db.QueryRow("SELECT id, notation_scale, text_size FROM preferences WHERE id = ?", models.PreferencesKey).
		Scan(&prefs.ID, &prefs.NotationScale, &prefs.TextSize)
	if err == sql.ErrNoRows {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("failed to query preferences: %w", err)
	}

	return prefs, nil
}

// SetNotationScale stores a clamped notation scale factor.
func (r *PreferencesRepository) SetNotationScale(scale float64) error {
	current, err := r.Get()
	if err != nil {
		return err
	}

	current.NotationScale = models.ClampNotationScale(scale)
	return r.put(current)
}

// SetTextSize stores a lyric text size step.
func (r *PreferencesRepository) SetTextSize(size string) error {
	if !models.ValidTextSize(size) {
		return fmt.Errorf("%w: text size %q", shared.ErrInvalidArgument, size)
	}

	current, err := r.Get()
	if err != nil {
		return err
	}

	current.TextSize = size
	return r.put(current)
}

// put upserts the singleton row.
func (r *PreferencesRepository) put(prefs models.Preferences) error {
	query := `
		INSERT INTO preferences (id, notation_scale, text_size) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET notation_scale = excluded.notation_scale, text_size = excluded.text_size
	`
	if _, err := r.db.Exec(query, models.PreferencesKey, prefs.NotationScale, prefs.TextSize); err != nil {
		return fmt.Errorf("failed to store preferences: %w", err)
	}
	return nil
}
