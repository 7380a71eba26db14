package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backends
const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
)

// Config holds all service configuration
type Config struct {
	Service    ServiceConfig
	Store      StoreConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Validation ValidationConfig
	Telemetry  TelemetryConfig
	Features   FeatureFlags
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

// StoreConfig selects and configures the catalog/ledger persistence
type StoreConfig struct {
	Backend string // "file" or "postgres"
	Dir     string // data directory for the file backend
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// CacheConfig holds lookup cache settings
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// RedisConfig holds Redis connection settings (rate limiter, distributed cache)
type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled         bool
	GlobalPerMinute int64
	ActorPerMinute  int64
}

// ValidationConfig holds dial-code validation settings
type ValidationConfig struct {
	// CodeRule is a CEL expression over `value` that proposed dial codes
	// must satisfy. Empty values are always accepted by the default rule.
	CodeRule string
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnablePprof bool
	PprofPort   int
}

// FeatureFlags for deployment toggles
type FeatureFlags struct {
	EnableDistributedCache bool
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"), // Default to text for development
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", StoreBackendFile),
			Dir:     getEnv("STORE_DIR", "./data"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "directory"),
			User:        getEnv("POSTGRES_USER", "directory"),
			Password:    getEnv("POSTGRES_PASSWORD", "directory"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 20),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 2),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Cache: CacheConfig{
			Enabled:    getEnvBool("CACHE_ENABLED", true),
			DefaultTTL: getEnvDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getEnvBool("RATE_LIMIT_ENABLED", false),
			GlobalPerMinute: int64(getEnvInt("RATE_LIMIT_GLOBAL_PER_MINUTE", 600)),
			ActorPerMinute:  int64(getEnvInt("RATE_LIMIT_ACTOR_PER_MINUTE", 120)),
		},
		Validation: ValidationConfig{
			CodeRule: getEnv("CODE_RULE", `value == "" || value.matches('^[*#][0-9*#]*#$')`),
		},
		Telemetry: TelemetryConfig{
			EnablePprof: getEnvBool("ENABLE_PPROF", false),
			PprofPort:   getEnvInt("PPROF_PORT", 6060),
		},
		Features: FeatureFlags{
			EnableDistributedCache: getEnvBool("ENABLE_DISTRIBUTED_CACHE", false),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	switch c.Store.Backend {
	case StoreBackendFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("store dir is required for the file backend")
		}
	case StoreBackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres backend")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			return fmt.Errorf("max_conns must be >= min_conns")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", c.Store.Backend)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.GlobalPerMinute < 1 || c.RateLimit.ActorPerMinute < 1 {
			return fmt.Errorf("rate limits must be positive")
		}
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// RedisAddr returns the Redis host:port address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
