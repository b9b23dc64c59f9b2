package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	JWT      JWTConfig      `json:"jwt"`
	Cache    CacheConfig    `json:"cache"`
	Search   SearchConfig   `json:"search"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	BaseRoute string `json:"baseRoute"`
	WebDomain string `json:"webDomain"`
	Debug     bool   `json:"debug"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Type     string           `json:"type"`
	Postgres PostgreSQLConfig `json:"postgres"`
}

// PostgreSQLConfig holds PostgreSQL-specific configuration
type PostgreSQLConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	SSLMode         string        `json:"sslMode"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
	ConnectTimeout  int           `json:"connectTimeout"`
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	PublicKey string `json:"publicKey"`
	ClaimKey  string `json:"claimKey"`
	// Disabled skips token verification. Local development only.
	Disabled bool `json:"disabled"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Enabled         bool          `json:"enabled"`
	Backend         string        `json:"backend"`
	TTL             time.Duration `json:"ttl"`
	Prefix          string        `json:"prefix"`
	MaxMemory       int64         `json:"maxMemory"`
	CleanupInterval time.Duration `json:"cleanupInterval"`
	Redis           RedisConfig   `json:"redis"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address      string `json:"address"`
	Password     string `json:"password"`
	Database     int    `json:"database"`
	PoolSize     int    `json:"poolSize"`
	MinIdleConns int    `json:"minIdleConns"`
}

// SearchConfig tunes the query executor and the preview port
type SearchConfig struct {
	DefaultLimit         int           `json:"defaultLimit"`
	MaxLimit             int           `json:"maxLimit"`
	ContentPreviewLength int           `json:"contentPreviewLength"`
	PreviewDebounce      time.Duration `json:"previewDebounce"`
	PreviewCacheTTL      time.Duration `json:"previewCacheTtl"`
	// Per-user request budgets over RateLimitWindow; zero disables a limit
	SearchRateLimit int           `json:"searchRateLimit"`
	CountRateLimit  int           `json:"countRateLimit"`
	RateLimitWindow time.Duration `json:"rateLimitWindow"`
}

const (
	DatabaseTypePostgreSQL = "postgresql"
	DatabaseTypeMemory     = "memory"
)

// LoadFromEnv loads configuration from the environment.
// Precedence: explicit environment variables, then the .env file, then defaults.
func LoadFromEnv() (*Config, error) {
	return LoadFromEnvFile("")
}

// LoadFromEnvFile is LoadFromEnv with an explicit .env location tried first
func LoadFromEnvFile(path string) (*Config, error) {
	envPaths := []string{".env", "../.env", "../../.env"}
	if path != "" {
		envPaths = append([]string{path}, envPaths...)
	}

	var loadErr error
	for _, envPath := range envPaths {
		loadErr = godotenv.Load(envPath)
		if loadErr == nil {
			break
		}
	}
	if loadErr != nil {
		fmt.Println("INFO: .env file not found, using environment variables and defaults.")
	}

	return build(os.LookupEnv)
}

// LoadFromMap loads configuration from an in-memory map.
// This is the primary helper for testing configuration logic in isolation
// without manipulating global environment variables.
func LoadFromMap(envMap map[string]string) (*Config, error) {
	return build(func(key string) (string, bool) {
		v, ok := envMap[key]
		return v, ok
	})
}

func build(lookup func(string) (string, bool)) (*Config, error) {
	e := env{lookup: lookup}

	config := &Config{
		Server: ServerConfig{
			Host:      e.str("HOST", "localhost"),
			Port:      e.int("SERVER_PORT", 8080),
			BaseRoute: e.str("BASE_ROUTE", "/api"),
			WebDomain: e.str("WEB_DOMAIN", "http://localhost:3000"),
			Debug:     e.bool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Type: e.str("DB_TYPE", DatabaseTypePostgreSQL),
			Postgres: PostgreSQLConfig{
				Host:            e.str("POSTGRES_HOST", "localhost"),
				Port:            e.int("POSTGRES_PORT", 5432),
				Username:        e.str("POSTGRES_USERNAME", ""),
				Password:        e.str("POSTGRES_PASSWORD", ""),
				Database:        e.str("POSTGRES_DATABASE", "sales_enablement"),
				SSLMode:         e.str("POSTGRES_SSL_MODE", "disable"),
				MaxOpenConns:    e.int("POSTGRES_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    e.int("POSTGRES_MAX_IDLE_CONNS", 25),
				ConnMaxLifetime: time.Duration(e.int("POSTGRES_CONN_MAX_LIFETIME", 300)) * time.Second,
				ConnectTimeout:  e.int("POSTGRES_CONNECT_TIMEOUT", 10),
			},
		},
		JWT: JWTConfig{
			PublicKey: e.str("JWT_PUBLIC_KEY", ""),
			ClaimKey:  e.str("JWT_CLAIM_KEY", "claim"),
			Disabled:  e.bool("AUTH_DISABLED", false),
		},
		Cache: CacheConfig{
			Enabled:         e.bool("CACHE_ENABLED", true),
			Backend:         e.str("CACHE_BACKEND", "memory"),
			TTL:             e.duration("CACHE_TTL", 15*time.Minute),
			Prefix:          e.str("CACHE_PREFIX", "docsearch:"),
			MaxMemory:       e.int64("CACHE_MAX_MEMORY", 32*1024*1024),
			CleanupInterval: e.duration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
			Redis: RedisConfig{
				Address:      e.str("REDIS_ADDRESS", "localhost:6379"),
				Password:     e.str("REDIS_PASSWORD", ""),
				Database:     e.int("REDIS_DATABASE", 0),
				PoolSize:     e.int("REDIS_POOL_SIZE", 10),
				MinIdleConns: e.int("REDIS_MIN_IDLE_CONNS", 2),
			},
		},
		Search: SearchConfig{
			DefaultLimit:         e.int("SEARCH_DEFAULT_LIMIT", 20),
			MaxLimit:             e.int("SEARCH_MAX_LIMIT", 100),
			ContentPreviewLength: e.int("SEARCH_CONTENT_PREVIEW_LENGTH", 200),
			PreviewDebounce:      e.duration("SEARCH_PREVIEW_DEBOUNCE", 400*time.Millisecond),
			PreviewCacheTTL:      e.duration("SEARCH_PREVIEW_CACHE_TTL", 30*time.Second),
			SearchRateLimit:      e.int("SEARCH_RATE_LIMIT", 60),
			CountRateLimit:       e.int("SEARCH_COUNT_RATE_LIMIT", 240),
			RateLimitWindow:      e.duration("SEARCH_RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields
func (c *Config) Validate() error {
	var errors []string

	if !c.JWT.Disabled && strings.TrimSpace(c.JWT.PublicKey) == "" {
		errors = append(errors, "JWT_PUBLIC_KEY is required")
	}

	validDbTypes := []string{DatabaseTypePostgreSQL, DatabaseTypeMemory}
	if !contains(validDbTypes, c.Database.Type) {
		errors = append(errors, fmt.Sprintf("DB_TYPE must be one of: %s", strings.Join(validDbTypes, ", ")))
	}

	validBackends := []string{"memory", "redis"}
	if c.Cache.Enabled && !contains(validBackends, c.Cache.Backend) {
		errors = append(errors, fmt.Sprintf("CACHE_BACKEND must be one of: %s", strings.Join(validBackends, ", ")))
	}

	if c.Search.MaxLimit < 1 {
		errors = append(errors, "SEARCH_MAX_LIMIT must be at least 1")
	}
	if c.Search.DefaultLimit < 1 || c.Search.DefaultLimit > c.Search.MaxLimit {
		errors = append(errors, "SEARCH_DEFAULT_LIMIT must be between 1 and SEARCH_MAX_LIMIT")
	}
	if c.Search.ContentPreviewLength < 1 {
		errors = append(errors, "SEARCH_CONTENT_PREVIEW_LENGTH must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// env reads typed values through a lookup function; malformed values fall back to the default
type env struct {
	lookup func(string) (string, bool)
}

func (e env) str(key, defaultValue string) string {
	if value, ok := e.lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func (e env) int(key string, defaultValue int) int {
	if value, ok := e.lookup(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e env) int64(key string, defaultValue int64) int64 {
	if value, ok := e.lookup(key); ok {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e env) bool(key string, defaultValue bool) bool {
	if value, ok := e.lookup(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (e env) duration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := e.lookup(key); ok {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
