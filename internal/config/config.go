package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Remote API
	APIBaseURL  string        // Base URL of the blog API (e.g. https://xxx.execute-api.us-east-1.amazonaws.com/prod)
	HTTPTimeout time.Duration // Client timeout for API and storage calls; 0 disables it

	// Web front-end
	ListenAddr         string
	GinMode            string
	PlaceholderCount   int   // Placeholder cards shown while the post list loads
	ExcerptLength      int   // Runes of post content shown on a card
	MaxUploadBytes     int64 // Largest image accepted from the browser
	SessionIdleTimeout time.Duration

	// Logging
	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", ""), "/"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		GinMode:    getEnv("GIN_MODE", "release"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFile:    getEnv("LOG_FILE", ""),
	}

	var err error
	cfg.HTTPTimeout, err = time.ParseDuration(getEnv("HTTP_TIMEOUT", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	cfg.SessionIdleTimeout, err = time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %w", err)
	}

	ints := []struct {
		key string
		def string
		dst *int
	}{
		{"PLACEHOLDER_COUNT", "6", &cfg.PlaceholderCount},
		{"EXCERPT_LENGTH", "100", &cfg.ExcerptLength},
		{"LOG_MAX_SIZE_MB", "100", &cfg.LogMaxSizeMB},
		{"LOG_MAX_BACKUPS", "3", &cfg.LogMaxBackups},
		{"LOG_MAX_AGE_DAYS", "7", &cfg.LogMaxAgeDays},
	}
	for _, i := range ints {
		v, err := strconv.Atoi(getEnv(i.key, i.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", i.key, err)
		}
		*i.dst = v
	}

	cfg.MaxUploadBytes, err = strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL: %q", c.APIBaseURL)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative")
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}
	if c.PlaceholderCount < 0 {
		return fmt.Errorf("PLACEHOLDER_COUNT must not be negative")
	}
	if c.ExcerptLength <= 0 {
		return fmt.Errorf("EXCERPT_LENGTH must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid GIN_MODE: %s (must be 'debug', 'release' or 'test')", c.GinMode)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
