package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.blarerc, $XDG_CONFIG_HOME/blare/config.toml, ~/.config/blare/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".blarerc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "blare", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Sonos
	if v := os.Getenv("BLARE_SONOS_CLIENT_ID"); v != "" {
		cfg.Sonos.ClientID = v
	}
	if v := os.Getenv("BLARE_SONOS_CLIENT_SECRET"); v != "" {
		cfg.Sonos.ClientSecret = v
	}

	// TTS
	if v := os.Getenv("BLARE_TTS_LANGUAGE"); v != "" {
		cfg.TTS.Language = v
	}

	// Server
	if v := os.Getenv("BLARE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("BLARE_SERVER_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = i
		}
	}
	if v := os.Getenv("BLARE_SERVER_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("BLARE_SERVER_CLIPS_DIR"); v != "" {
		cfg.Server.ClipsDir = v
	}

	// Storage
	if v := os.Getenv("BLARE_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}

	// Log
	if v := os.Getenv("BLARE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
