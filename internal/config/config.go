package config

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// OpenAI LLM configuration
	OpenAI OpenAIConfig

	// Authentication configuration
	Auth AuthConfig

	// Server configuration
	Server ServerConfig

	// Query configuration
	Query QueryConfig
}

// DatabaseConfig holds SQLite configuration
type DatabaseConfig struct {
	Path           string
	MigrationsPath string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// AuthConfig holds authentication and authorization configuration
type AuthConfig struct {
	JWTSecret     string
	JWTExpiry     time.Duration
	SessionExpiry time.Duration
	RateLimit     int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port    string
	GinMode string
}

// QueryConfig holds query processing configuration
type QueryConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	Policy   string // "full" or "prefix-only"
}

// Loader resolves the configuration from a Source, filling defaults
// for every key the source misses.
type Loader struct {
	source Source
}

// NewLoader creates a loader backed by the given source.
func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// NewDefaultLoader creates a loader that prefers mounted secret files
// and falls back to environment variables.
func NewDefaultLoader() *Loader {
	return NewLoader(Sources{
		NewFileSource("/var/secrets"),
		EnvSource{},
	})
}

// Load loads the complete configuration
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	cfg := &Config{}

	// Load Database config
	cfg.Database = DatabaseConfig{
		Path:           l.getString(ctx, "DB_PATH", "games.db"),
		MigrationsPath: l.getString(ctx, "MIGRATIONS_PATH", "./migrations"),
	}

	// Load Redis config
	cfg.Redis = RedisConfig{
		Addr:     l.getString(ctx, "REDIS_ADDR", "localhost:6379"),
		Password: l.getString(ctx, "REDIS_PASSWORD", ""),
		DB:       l.getInt(ctx, "REDIS_DB", 0),
	}

	// Load OpenAI config
	cfg.OpenAI = OpenAIConfig{
		APIKey:  l.getString(ctx, "OPENAI_API_KEY", ""),
		Model:   l.getString(ctx, "OPENAI_MODEL", "gpt-4o-mini"),
		BaseURL: l.getString(ctx, "OPENAI_BASE_URL", ""),
		Timeout: l.getDuration(ctx, "OPENAI_TIMEOUT", 30*time.Second),
	}

	// Load Auth config
	cfg.Auth = AuthConfig{
		JWTSecret:     l.getString(ctx, "JWT_SECRET", ""),
		JWTExpiry:     l.getDuration(ctx, "JWT_EXPIRY", 24*time.Hour),
		SessionExpiry: l.getDuration(ctx, "SESSION_EXPIRY", 7*24*time.Hour),
		RateLimit:     l.getInt(ctx, "RATE_LIMIT", 100),
	}

	// Load Server config
	cfg.Server = ServerConfig{
		Port:    l.getString(ctx, "PORT", "8080"),
		GinMode: l.getString(ctx, "GIN_MODE", "debug"),
	}

	// Load Query config
	cfg.Query = QueryConfig{
		Timeout:  l.getDuration(ctx, "QUERY_TIMEOUT", 30*time.Second),
		CacheTTL: l.getDuration(ctx, "CACHE_TTL", 5*time.Minute),
		Policy:   l.getString(ctx, "QUERY_POLICY", "full"),
	}

	return cfg, nil
}

// Typed getters. Malformed values fall back to the default rather than
// failing the load; Validate catches values that are well-formed but
// out of range.

func (l *Loader) getString(ctx context.Context, key, defaultValue string) string {
	if value, ok := l.source.Lookup(ctx, key); ok {
		return value
	}
	return defaultValue
}

func (l *Loader) getInt(ctx context.Context, key string, defaultValue int) int {
	value, ok := l.source.Lookup(ctx, key)
	if !ok {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

func (l *Loader) getDuration(ctx context.Context, key string, defaultValue time.Duration) time.Duration {
	value, ok := l.source.Lookup(ctx, key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// MustLoad loads configuration and panics on error
// Useful for application startup
func (l *Loader) MustLoad(ctx context.Context) *Config {
	cfg, err := l.Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
