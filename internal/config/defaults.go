package config

import (
	"fmt"
	"strings"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		TTS: TTSConfig{
			Language: "en",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8349,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// TTS
	if c.TTS.Language == "" {
		c.TTS.Language = d.TTS.Language
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// ExternalBaseURL returns the externally reachable base URL of the service,
// without a trailing slash.
func (c *Config) ExternalBaseURL() string {
	if c.Server.BaseURL != "" {
		return strings.TrimRight(c.Server.BaseURL, "/")
	}
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// RedirectURI returns the OAuth redirect URI for this service.
func (c *Config) RedirectURI() string {
	return c.ExternalBaseURL() + "/redirect"
}
