// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/web and cmd/statsctl.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Supported languages and site constants
// --------------------------------------------------------------------------

// SupportedLanguages is the fixed set of display languages, in preference order.
var SupportedLanguages = []string{"ca", "es", "en"}

const (
	DefaultLanguage = "ca"
	DefaultLoginURL = "https://app.voleibolstats.com"
)

// Schema variant overrides accepted by SCHEMA_VARIANT.
const (
	SchemaAuto     = "auto"
	SchemaClassic  = "classic"
	SchemaSets     = "sets"
	SchemaHomeAway = "homeaway"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database. An empty DatabaseURL means the store is unavailable and
	// every page renders with empty sections.
	DatabaseURL      string
	DBPoolMinConns   int
	DBPoolOverflow   int
	DBPoolRecycle    time.Duration
	DBAcquireTimeout time.Duration
	SchemaVariant    string

	// HTTP server
	Host        string
	Port        int
	Environment string // development, staging, production
	Debug       bool
	LogLevel    slog.Level

	// Site
	SessionSecret   string
	DefaultLanguage string
	LoginURL        string
	TeamMatchLimit  int

	// CORS for /static assets
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Page cache
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      strings.TrimSpace(envOr("DATABASE_URL", "")),
		DBPoolMinConns:   envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolOverflow:   envInt("DB_POOL_OVERFLOW", 3),
		DBPoolRecycle:    time.Duration(envInt("DB_POOL_RECYCLE_SECONDS", 300)) * time.Second,
		DBAcquireTimeout: time.Duration(envInt("DB_ACQUIRE_TIMEOUT_SECONDS", 30)) * time.Second,
		SchemaVariant:    strings.ToLower(envOr("SCHEMA_VARIANT", SchemaAuto)),

		Host:        envOr("HOST", "0.0.0.0"),
		Port:        envInt("PORT", 5000),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),
		LogLevel:    parseLogLevel(envOr("LOG_LEVEL", "info")),

		SessionSecret:   envOr("SESSION_SECRET", ""),
		DefaultLanguage: strings.ToLower(envOr("DEFAULT_LANGUAGE", DefaultLanguage)),
		LoginURL:        envOr("LOGIN_URL", DefaultLoginURL),
		TeamMatchLimit:  envInt("TEAM_MATCH_LIMIT", 10),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{"*"}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
		CacheTTL:     time.Duration(envInt("CACHE_TTL_SECONDS", 60)) * time.Second,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPoolMinConns < 1 {
		return fmt.Errorf("DB_POOL_MIN_CONNS must be >= 1, got %d", c.DBPoolMinConns)
	}
	if c.DBPoolOverflow < 0 {
		return fmt.Errorf("DB_POOL_OVERFLOW must be >= 0, got %d", c.DBPoolOverflow)
	}
	if c.DBPoolRecycle <= 0 {
		return fmt.Errorf("DB_POOL_RECYCLE_SECONDS must be > 0")
	}
	if c.DBAcquireTimeout < 0 {
		return fmt.Errorf("DB_ACQUIRE_TIMEOUT_SECONDS must be >= 0")
	}
	switch c.SchemaVariant {
	case SchemaAuto, SchemaClassic, SchemaSets, SchemaHomeAway:
	default:
		return fmt.Errorf("SCHEMA_VARIANT must be one of auto, classic, sets, homeaway; got %q", c.SchemaVariant)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if !IsSupportedLanguage(c.DefaultLanguage) {
		return fmt.Errorf("DEFAULT_LANGUAGE must be one of %s; got %q",
			strings.Join(SupportedLanguages, ", "), c.DefaultLanguage)
	}
	if c.TeamMatchLimit < 0 {
		return fmt.Errorf("TEAM_MATCH_LIMIT must be >= 0")
	}
	if c.RateLimitEnabled && (c.RateLimitRequests < 1 || c.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	if c.CacheEnabled && c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be > 0 when the cache is enabled")
	}
	return nil
}

// HasDatabase reports whether a connection target is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// DBPoolMaxConns is the core pool size plus the burst overflow.
func (c *Config) DBPoolMaxConns() int {
	return c.DBPoolMinConns + c.DBPoolOverflow
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsSupportedLanguage reports whether code is one of SupportedLanguages.
func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

func parseLogLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
