package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
)

// Config represents the application configuration.
// Values come from ~/.runlog/config.json and are then overridden by any
// environment variables that are set.
type Config struct {
	Strava   StravaConfig   `json:"strava"`
	Server   ServerConfig   `json:"server"`
	Client   ClientConfig   `json:"client"`
	Sync     SyncConfig     `json:"sync"`
	Database DatabaseConfig `json:"database"`
	Log      LogConfig      `json:"log"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id" env:"STRAVA_CLIENT_ID"`
	ClientSecret string `json:"client_secret" env:"STRAVA_CLIENT_SECRET"`
	// RefreshToken seeds an empty token store without the browser flow
	RefreshToken string `json:"refresh_token,omitempty" env:"STRAVA_REFRESH_TOKEN"`
	CallbackPort int    `json:"callback_port" env:"STRAVA_CALLBACK_PORT"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Addr           string   `json:"addr" env:"RUNLOG_HTTP_ADDR"`
	AllowedOrigins []string `json:"allowed_origins" env:"RUNLOG_ALLOWED_ORIGINS" envSeparator:","`
	RateLimitRPS   float64  `json:"rate_limit_rps" env:"RUNLOG_RATE_LIMIT_RPS"`
	RateLimitBurst int      `json:"rate_limit_burst" env:"RUNLOG_RATE_LIMIT_BURST"`
}

// ClientConfig holds settings for the terminal dashboard
type ClientConfig struct {
	APIURL string `json:"api_url" env:"RUNLOG_API_URL"`
}

// SyncConfig controls what a sync pulls from Strava
type SyncConfig struct {
	PerPage     int    `json:"per_page" env:"RUNLOG_SYNC_PER_PAGE"`
	Pages       int    `json:"pages" env:"RUNLOG_SYNC_PAGES"`
	PrimaryType string `json:"primary_type" env:"RUNLOG_SYNC_PRIMARY_TYPE"`
	SkipDetails bool   `json:"skip_details" env:"RUNLOG_SYNC_SKIP_DETAILS"`
}

// DatabaseConfig holds storage settings
type DatabaseConfig struct {
	Path string `json:"path" env:"RUNLOG_DB_PATH"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `json:"level" env:"RUNLOG_LOG_LEVEL"`
	Format string `json:"format" env:"RUNLOG_LOG_FORMAT"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Strava: StravaConfig{
			CallbackPort: 8089,
		},
		Server: ServerConfig{
			Addr:           "localhost:3000",
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Client: ClientConfig{
			APIURL: "http://localhost:3000",
		},
		Sync: SyncConfig{
			PerPage:     30,
			Pages:       1,
			PrimaryType: "Run",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads ~/.runlog/config.json and applies environment overrides
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path and applies environment overrides
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &cfg, nil
}

// FromEnv builds a configuration from defaults and the environment only
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &cfg, nil
}

// applyDefaults fills zero values left by a partial config file
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Strava.CallbackPort == 0 {
		c.Strava.CallbackPort = d.Strava.CallbackPort
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = d.Server.RateLimitRPS
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = d.Server.RateLimitBurst
	}
	if c.Client.APIURL == "" {
		c.Client.APIURL = d.Client.APIURL
	}
	if c.Sync.PerPage == 0 {
		c.Sync.PerPage = d.Sync.PerPage
	}
	if c.Sync.Pages == 0 {
		c.Sync.Pages = d.Sync.Pages
	}
	if c.Sync.PrimaryType == "" {
		c.Sync.PrimaryType = d.Sync.PrimaryType
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Save writes the configuration to ~/.runlog/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes the configuration to path
func SaveFile(path string, cfg *Config) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava.ClientID = "YOUR_CLIENT_ID"
	example.Strava.ClientSecret = "YOUR_CLIENT_SECRET"
	return Save(&example)
}

// Validate checks the settings every command relies on
func (c *Config) Validate() error {
	if c.Sync.PerPage < 1 || c.Sync.PerPage > 200 {
		return fmt.Errorf("sync.per_page must be between 1 and 200, got %d", c.Sync.PerPage)
	}
	if c.Sync.Pages < 0 {
		return fmt.Errorf("sync.pages must not be negative, got %d", c.Sync.Pages)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return errors.New("server rate limits must not be negative")
	}
	return nil
}

// ValidateStrava checks the credentials needed to talk to Strava
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// DBPath returns the configured database path or ~/.runlog/data.db
func (c *Config) DBPath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data.db"), nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".runlog"), nil
}
