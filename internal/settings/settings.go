// Package settings persists the small amount of user state that survives
// between runs: the submitter name and EGN last used. Problems with the
// settings file never fail a VAT run.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"vatex/internal/logger"
)

// UserSettings is what gets remembered between runs.
type UserSettings struct {
	SubmitterPerson string `json:"submitter_person"`
	EGN             string `json:"egn"`
}

// Load reads previously saved settings. A missing, corrupt or unreadable
// file yields empty defaults.
func Load(path string) UserSettings {
	data, err := os.ReadFile(path)
	if err != nil {
		return UserSettings{}
	}

	var s UserSettings
	if err := json.Unmarshal(data, &s); err != nil {
		log := logger.WithComponent("settings")
		log.Warn().
			Str("file", path).
			Msg("Settings file is corrupt, using empty defaults")
		return UserSettings{}
	}
	return s
}

// Save writes the settings. Errors are logged and swallowed.
func Save(path string, s UserSettings) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return
	}
	if dir := filepath.Dir(path); dir != "" {
		_ = os.MkdirAll(dir, 0755)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log := logger.WithComponent("settings")
		log.Warn().
			Err(err).
			Str("file", path).
			Msg("Could not save settings")
	}
}
