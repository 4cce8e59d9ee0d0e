package jukebox

import (
	"context"
	"encoding/json"
	"fmt"
)

// Theme is the party decoration theme shown by clients.
type Theme string

const (
	ThemeNormal    Theme = "normal"
	ThemeTet       Theme = "tet"
	ThemeValentine Theme = "valentine"
	ThemeChildren  Theme = "children"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeNormal, ThemeTet, ThemeValentine, ThemeChildren:
		return true
	}
	return false
}

// Settings is the typed view over the system_settings table. Values
// are validated here at the boundary; storage stays key -> JSONB.
type Settings struct {
	RadioMode      bool  `json:"radioMode"`
	ClientPlayback bool  `json:"clientPlayback"`
	Theme          Theme `json:"theme"`
}

// SettingsPatch carries a partial settings update; nil fields are
// left untouched.
type SettingsPatch struct {
	RadioMode      *bool  `json:"radioMode"`
	ClientPlayback *bool  `json:"clientPlayback"`
	Theme          *Theme `json:"theme"`
}

const (
	settingRadioMode      = "radioMode"
	settingClientPlayback = "clientPlayback"
	settingTheme          = "theme"
)

// SettingsStore reads and upserts system settings.
type SettingsStore struct {
	db DB
}

func NewSettingsStore(db DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Load returns current settings, with defaults for missing keys.
func (st *SettingsStore) Load(ctx context.Context) (Settings, error) {
	s := Settings{Theme: ThemeNormal}

	rows, err := st.db.Query(ctx, `SELECT key, value FROM system_settings`)
	if err != nil {
		return s, err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return s, err
		}
		switch key {
		case settingRadioMode:
			_ = json.Unmarshal(raw, &s.RadioMode)
		case settingClientPlayback:
			_ = json.Unmarshal(raw, &s.ClientPlayback)
		case settingTheme:
			var t Theme
			if err := json.Unmarshal(raw, &t); err == nil && t.Valid() {
				s.Theme = t
			}
		}
	}
	return s, rows.Err()
}

// Apply validates and upserts the non-nil fields of patch, then
// returns the resulting settings.
func (st *SettingsStore) Apply(ctx context.Context, patch SettingsPatch) (Settings, error) {
	if patch.Theme != nil && !patch.Theme.Valid() {
		return Settings{}, fmt.Errorf("invalid theme %q", *patch.Theme)
	}

	if patch.RadioMode != nil {
		if err := st.upsert(ctx, settingRadioMode, *patch.RadioMode); err != nil {
			return Settings{}, err
		}
	}
	if patch.ClientPlayback != nil {
		if err := st.upsert(ctx, settingClientPlayback, *patch.ClientPlayback); err != nil {
			return Settings{}, err
		}
	}
	if patch.Theme != nil {
		if err := st.upsert(ctx, settingTheme, *patch.Theme); err != nil {
			return Settings{}, err
		}
	}

	return st.Load(ctx)
}

func (st *SettingsStore) upsert(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = st.db.Exec(ctx, `
      INSERT INTO system_settings (key, value)
      VALUES ($1, $2::jsonb)
      ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
    `, key, string(raw))
	return err
}
