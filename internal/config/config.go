package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Uploads    UploadsConfig    `yaml:"uploads"`
	Copywriter CopywriterConfig `yaml:"copywriter"`
	Render     RenderConfig     `yaml:"render"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         string   `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// StoreConfig contains listing store settings
type StoreConfig struct {
	Path          string `yaml:"path"`
	BackupEnabled bool   `yaml:"backup_enabled"`
	BackupTime    string `yaml:"backup_time"`
	BackupDir     string `yaml:"backup_dir"`
	BackupKeep    int    `yaml:"backup_keep"`
}

// UploadsConfig contains image upload settings
type UploadsConfig struct {
	Dir       string `yaml:"dir"`
	MaxSizeMB int64  `yaml:"max_size_mb"`
}

// CopywriterConfig contains settings for the external text-generation API
type CopywriterConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RenderConfig contains headless-browser PDF settings
type RenderConfig struct {
	ChromePath     string `yaml:"chrome_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Workers        int    `yaml:"workers"`
}

// RateLimitConfig contains rate limiting settings for copy generation
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
	RequestsPerDay    int  `yaml:"requests_per_day"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8090",
			AllowOrigins: []string{"http://localhost:5173"},
		},
		Store: StoreConfig{
			Path:          "data/listings.json",
			BackupEnabled: false,
			BackupTime:    "03:00",
			BackupDir:     "data/backups",
			BackupKeep:    14,
		},
		Uploads: UploadsConfig{
			Dir:       "data/uploads",
			MaxSizeMB: 8,
		},
		Copywriter: CopywriterConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 45,
		},
		Render: RenderConfig{
			TimeoutSeconds: 30,
			Workers:        2,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 10,
			RequestsPerHour:   120,
			RequestsPerDay:    600,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		applyEnvOverrides(config)
		return config, nil
	}

	// Read file
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides layers environment variables over the file so secrets
// never have to live in config.yaml
func applyEnvOverrides(config *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.Copywriter.APIKey = key
	}
	if path := os.Getenv("CHROME_PATH"); path != "" {
		config.Render.ChromePath = path
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
}

// GetTimeout returns the copywriter request timeout as a duration
func (c *CopywriterConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetTimeout returns the render timeout as a duration
func (c *RenderConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxBytes returns the upload size cap in bytes
func (c *UploadsConfig) MaxBytes() int64 {
	return c.MaxSizeMB * 1024 * 1024
}
