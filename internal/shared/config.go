package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Sync     SyncConfig     `toml:"sync"`
	Display  DisplayConfig  `toml:"display"`
}

// ServerConfig contains backend content API settings.
type ServerConfig struct {
	BaseURL string `toml:"base_url"`

	// StaticToken bypasses the login flow when set (debug/kiosk mode).
	// Overridden by the HYMNAL_AUTH_TOKEN environment variable.
	StaticToken string `toml:"static_token"`
}

// DatabaseConfig contains local store settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SyncConfig contains sync orchestration settings.
type SyncConfig struct {
	// BatchSize bounds how many asset downloads run concurrently.
	BatchSize int `toml:"batch_size"`

	// RateLimit caps outbound asset requests per second.
	RateLimit float64 `toml:"rate_limit"`
}

// DisplayConfig contains presentation settings consumed by export formatting.
type DisplayConfig struct {
	// CategoryMergeThreshold merges categories with fewer songs than this
	// into a catch-all bucket. Zero disables merging.
	CategoryMergeThreshold int `toml:"category_merge_threshold"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
// A .env file next to the process, if present, supplies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidArgument)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnv layers environment variables over file-based configuration.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("HYMNAL_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("HYMNAL_AUTH_TOKEN"); v != "" {
		c.Server.StaticToken = v
	}
	if v := os.Getenv("HYMNAL_DB_PATH"); v != "" {
		c.Database.Path = v
	}
}
