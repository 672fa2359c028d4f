package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	intconfig "umrahtransfer/internal/config"
	"umrahtransfer/internal/domain/models"
)

// SettingsRepository stores site settings as one JSON row (id = 1).
type SettingsRepository struct {
	DB *sql.DB
}

func (r SettingsRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Get falls back to DefaultSettings until an admin saves the form. Keys
// missing from the stored JSON keep their defaults.
func (r SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	s := models.DefaultSettings()
	var raw string
	err := r.db().QueryRowContext(ctx, `SELECT data FROM settings WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("load settings: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return models.DefaultSettings(), fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func (r SettingsRepository) Save(ctx context.Context, s models.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.db().ExecContext(ctx, `
		INSERT INTO settings (id, data) VALUES (1, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data)`, string(raw))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
