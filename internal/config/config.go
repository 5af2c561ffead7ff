// Package config handles editor configuration loading and management.
package config

import "path/filepath"

// Config holds all editor settings.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	MyModsBasePath string            `yaml:"mymods_base_path"` // Root of <profile>/<mod>.pack
	Games          map[string]string `yaml:"games"`            // Profile id -> game data folder
}

// UIConfig holds editor behavior settings.
type UIConfig struct {
	RememberTableStatePermanently bool   `yaml:"remember_table_state_permanently"`
	DefaultProfile                string `yaml:"default_profile"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// TableStateFile is the name of the persisted UI-state file.
const TableStateFile = "table_state.yaml"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Games: map[string]string{},
		},
		UI: UIConfig{
			DefaultProfile: "warhammer_2",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// GamePath returns the data folder configured for a profile, or "".
func (c *Config) GamePath(profileID string) string {
	return c.Paths.Games[profileID]
}

// SetGamePath configures the data folder of a profile.
func (c *Config) SetGamePath(profileID, path string) {
	if c.Paths.Games == nil {
		c.Paths.Games = map[string]string{}
	}
	c.Paths.Games[profileID] = path
}

// TableStatePath returns where persisted UI state is stored.
func TableStatePath() string {
	return filepath.Join(ConfigDir(), TableStateFile)
}
