// Package server provides configuration helpers that define runtime defaults,
// file overrides, and environment overrides for the linecast service.
package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string
	Format string
}

// Config holds the server configuration settings.
type Config struct {
	// ListenAddr is the TCP address the broadcast listener binds to.
	ListenAddr string
	// HTTPAddr is the address of the HTTP sidecar (health, /ws bridge,
	// /metrics). Empty disables the HTTP listener.
	HTTPAddr        string
	AllowedOrigins  []string
	MaxMessageSize  int
	RateLimit       RateLimitConfig
	ShutdownTimeout time.Duration
	Log             LogConfig
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	return &Config{
		ListenAddr: ":12345",
		HTTPAddr:   ":8080",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize: 64 * 1024,
		RateLimit: RateLimitConfig{
			Burst:          64,
			RefillInterval: time.Second,
		},
		ShutdownTimeout: 10 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// fileConfig is the YAML schema of the configuration file. Pointer fields
// distinguish "absent" from explicit zero values (an empty http_addr disables
// the HTTP listener); durations are strings in time.ParseDuration syntax.
type fileConfig struct {
	ListenAddr     *string  `yaml:"listen_addr"`
	HTTPAddr       *string  `yaml:"http_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxMessageSize *int     `yaml:"max_message_size"`
	RateLimit      struct {
		Burst          *int    `yaml:"burst"`
		RefillInterval *string `yaml:"refill_interval"`
	} `yaml:"rate_limit"`
	ShutdownTimeout *string `yaml:"shutdown_timeout"`
	Log             struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// LoadConfig builds the effective configuration: defaults, overlaid by the
// YAML file at path (if path is non-empty), overlaid by environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if err := cfg.applyFile(&fc); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.sanitize()
	return cfg, nil
}

func (c *Config) applyFile(fc *fileConfig) error {
	if fc.ListenAddr != nil {
		c.ListenAddr = *fc.ListenAddr
	}
	if fc.HTTPAddr != nil {
		c.HTTPAddr = *fc.HTTPAddr
	}
	if fc.AllowedOrigins != nil {
		c.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.MaxMessageSize != nil {
		c.MaxMessageSize = *fc.MaxMessageSize
	}
	if fc.RateLimit.Burst != nil {
		c.RateLimit.Burst = *fc.RateLimit.Burst
	}
	if fc.RateLimit.RefillInterval != nil {
		d, err := time.ParseDuration(*fc.RateLimit.RefillInterval)
		if err != nil {
			return fmt.Errorf("rate_limit.refill_interval: %w", err)
		}
		c.RateLimit.RefillInterval = d
	}
	if fc.ShutdownTimeout != nil {
		d, err := time.ParseDuration(*fc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("shutdown_timeout: %w", err)
		}
		c.ShutdownTimeout = d
	}
	if fc.Log.Level != "" {
		c.Log.Level = fc.Log.Level
	}
	if fc.Log.Format != "" {
		c.Log.Format = fc.Log.Format
	}
	return nil
}

// applyEnv overrides configuration fields from environment variables.
// Falls back to the current values if a variable is not set or unparseable.
func (c *Config) applyEnv() {
	if addr := os.Getenv("LINECAST_LISTEN_ADDR"); addr != "" {
		c.ListenAddr = addr
	}
	if addr := os.Getenv("LINECAST_HTTP_ADDR"); addr != "" {
		c.HTTPAddr = addr
	}
	if origins := os.Getenv("LINECAST_ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = parseOrigins(origins)
	}
	if maxSize := os.Getenv("LINECAST_MAX_MESSAGE_SIZE"); maxSize != "" {
		c.MaxMessageSize = parseIntValue(maxSize, c.MaxMessageSize)
	}
	if burst := os.Getenv("LINECAST_RATE_LIMIT_BURST"); burst != "" {
		c.RateLimit.Burst = parseIntValue(burst, c.RateLimit.Burst)
	}
	if interval := os.Getenv("LINECAST_RATE_LIMIT_REFILL_INTERVAL"); interval != "" {
		c.RateLimit.RefillInterval = parseDurationValue(interval, c.RateLimit.RefillInterval)
	}
	if timeout := os.Getenv("LINECAST_SHUTDOWN_TIMEOUT"); timeout != "" {
		c.ShutdownTimeout = parseDurationValue(timeout, c.ShutdownTimeout)
	}
	if level := os.Getenv("LINECAST_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("LINECAST_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
}

func (c *Config) sanitize() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":12345"
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 64 * 1024
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 64
	}
	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseIntValue(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseDurationValue(value string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
