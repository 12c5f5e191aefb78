// Package config loads application configuration from environment variables.
// All variables use the LEARN_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Content  ContentConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Events   EventsConfig
	Auth     AuthConfig
	Render   RenderConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ContentConfig holds chapter source settings.
type ContentConfig struct {
	Path        string
	FrontMatter string // "scan" or "yaml"
}

// DatabaseConfig holds PostgreSQL connection settings.
// An empty URL disables the persisted event log.
type DatabaseConfig struct {
	URL          string
	MaxConns     int
	MinConns     int
	EnsureSchema bool
}

// CacheConfig holds Dragonfly/Redis connection settings.
// An empty URL disables change publishing.
type CacheConfig struct {
	URL     string
	Channel string
}

// EventsConfig holds progress notification settings.
type EventsConfig struct {
	Buffer int
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	AdminKeyHash string // bcrypt; empty leaves admin routes open
}

// RenderConfig holds markdown rendering settings.
type RenderConfig struct {
	Style string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with LEARN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("LEARN_SERVER_PORT", 8080),
			Host: envStr("LEARN_SERVER_HOST", "0.0.0.0"),
		},
		Content: ContentConfig{
			Path:        envStr("LEARN_CONTENT_PATH", "./chapters"),
			FrontMatter: strings.ToLower(envStr("LEARN_CONTENT_FRONTMATTER", "scan")),
		},
		Database: DatabaseConfig{
			URL:          envStr("LEARN_DATABASE_URL", ""),
			MaxConns:     envInt("LEARN_DATABASE_MAX_CONNS", 10),
			MinConns:     envInt("LEARN_DATABASE_MIN_CONNS", 1),
			EnsureSchema: envBool("LEARN_DATABASE_ENSURE_SCHEMA", true),
		},
		Cache: CacheConfig{
			URL:     envStr("LEARN_CACHE_URL", ""),
			Channel: envStr("LEARN_CACHE_CHANNEL", "tutorial:progress"),
		},
		Events: EventsConfig{
			Buffer: envInt("LEARN_EVENTS_BUFFER", 64),
		},
		Auth: AuthConfig{
			AdminKeyHash: envStr("LEARN_AUTH_ADMIN_KEY_HASH", ""),
		},
		Render: RenderConfig{
			Style: envStr("LEARN_RENDER_STYLE", "monokai"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(envStr("LEARN_LOG_LEVEL", "info")),
			Format: strings.ToLower(envStr("LEARN_LOG_FORMAT", "json")),
		},
	}

	return cfg, nil
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("LEARN_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Content.FrontMatter != "scan" && c.Content.FrontMatter != "yaml" {
		return fmt.Errorf("LEARN_CONTENT_FRONTMATTER must be 'scan' or 'yaml', got %q", c.Content.FrontMatter)
	}

	if c.Events.Buffer <= 0 {
		return fmt.Errorf("LEARN_EVENTS_BUFFER must be positive, got %d", c.Events.Buffer)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LEARN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	if c.Cache.URL != "" && c.Cache.Channel == "" {
		return fmt.Errorf("LEARN_CACHE_CHANNEL is required when LEARN_CACHE_URL is set")
	}

	return nil
}

// HasDatabase returns true if a Postgres URL is configured.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasCache returns true if a Redis URL is configured.
func (c *Config) HasCache() bool {
	return c.Cache.URL != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
