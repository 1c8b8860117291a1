// Package config provides YAML-based loading of the engine tuning, merging
// user overrides field by field over the shipped defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-pulse/internal/engine"
)

// Load returns the engine configuration.
// Search order: customPath -> ~/.pulse/configs/pulse.yaml -> ./configs/pulse.yaml -> embedded default.
// Files are unmarshalled over the defaults, so a partial file overrides only
// the fields it names. Range validation happens later, in engine.New.
func Load(customPath string) (engine.Config, error) {
	cfg := engine.DefaultConfig()

	// A custom path must load; anything else is an error the user wants to
	// hear about.
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("pulse.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/pulse.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultPulseYAML, &cfg); err != nil {
		return engine.DefaultConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is
// unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pulse", "configs", filename)
}

// Preset is a named survivability/pacing profile applied on top of a loaded
// config.
type Preset string

const (
	PresetEasy   Preset = "easy"
	PresetNormal Preset = "normal"
	PresetHard   Preset = "hard"
)

// ApplyPreset adjusts cfg for a difficulty preset. Unknown or empty presets
// leave the config untouched.
func ApplyPreset(cfg *engine.Config, preset Preset) {
	switch preset {
	case PresetEasy:
		cfg.MaxLives++
		cfg.StartingLives++
		cfg.WindowShrinkStart += 15000
	case PresetHard:
		if cfg.StartingLives > 1 {
			cfg.StartingLives--
		}
		cfg.WindowShrinkStart -= 10000
		if cfg.WindowShrinkStart < 10000 {
			cfg.WindowShrinkStart = 10000
		}
		cfg.WindowShrinkRate *= 1.5
	}
}
