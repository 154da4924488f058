package config

// Config is the root configuration structure.
type Config struct {
	Sonos   SonosConfig   `toml:"sonos"`
	TTS     TTSConfig     `toml:"tts"`
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// SonosConfig holds Sonos Control API credentials.
type SonosConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// TTSConfig holds text-to-speech settings.
type TTSConfig struct {
	Language string `toml:"language"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// BaseURL is the externally reachable base URL of this service. It is
	// used to build the OAuth redirect URI and local clip stream URLs. When
	// empty, it is derived from Host and Port.
	BaseURL string `toml:"base_url"`

	// ClipsDir is a directory of local audio files served under /mp3/.
	ClipsDir string `toml:"clips_dir"`
}

// StorageConfig holds credential persistence settings.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}
