package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/nhatro/ownerportal/pkg/httpx"
)

// Storage drivers accepted in PORTAL_STORAGE_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

type Config struct {
	APIBaseURL string        // Backend API root, e.g. http://localhost:3000/api (default)
	APITimeout time.Duration // Per-request timeout for backend calls (default: 30s)
	ListenAddr string        // HTTP listen address (default: 127.0.0.1:8080)

	StorageDriver string // sqlite, redis or memory (default: sqlite)
	DatabaseFile  string // SQLite database file (default: ./portal.db)
	RedisAddr     string // Redis address (default: localhost:6379)
	RedisPassword string // Optional
	RedisDB       int    // Redis logical database (default: 0)
	RedisPrefix   string // Key prefix (default: ownerportal)

	// Sealed storage is enabled when either is set. MasterKey wins.
	MasterKeyPath string
	MasterKey     string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	LogFile             string        // Optional: rotating log file
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	// LoginLimit.TrustedProxies comes from PORTAL_TRUSTED_PROXIES, a
	// comma-separated list of IPs and CIDRs.
	LoginLimit httpx.RateLimitConfig
}

// LoadConfig reads the environment. Variables from the file named by
// PORTAL_ENV_FILE (default .env) are applied first but never override the
// real environment; a missing file is ignored.
func LoadConfig() (Config, error) {
	envFile := getEnvOrDefault("PORTAL_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Config{
		APIBaseURL: getEnvOrDefault("PORTAL_API_BASE_URL", "http://localhost:3000/api"),
		APITimeout: getEnvDurationOrDefault("PORTAL_API_TIMEOUT", 30*time.Second),
		ListenAddr: getEnvOrDefault("PORTAL_LISTEN_ADDR", "127.0.0.1:8080"),

		StorageDriver: getEnvOrDefault("PORTAL_STORAGE_DRIVER", DriverSQLite),
		DatabaseFile:  getEnvOrDefault("PORTAL_DATABASE_FILE", "portal.db"),
		RedisAddr:     getEnvOrDefault("PORTAL_REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("PORTAL_REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("PORTAL_REDIS_DB", 0),
		RedisPrefix:   getEnvOrDefault("PORTAL_REDIS_PREFIX", "ownerportal"),

		MasterKeyPath: os.Getenv("PORTAL_MASTER_KEY_PATH"),
		MasterKey:     os.Getenv("PORTAL_MASTER_KEY"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:             os.Getenv("LOG_FILE"),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		LoginLimit: httpx.ParseRateLimitFromEnv("LOGIN", httpx.LoginLimit),
	}

	proxies, err := httpx.ParseTrustedProxies(os.Getenv("PORTAL_TRUSTED_PROXIES"))
	if err != nil {
		return Config{}, fmt.Errorf("PORTAL_TRUSTED_PROXIES: %w", err)
	}
	cfg.LoginLimit.TrustedProxies = proxies

	return cfg, cfg.Validate()
}

// Validate reports configuration that cannot start the service.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("PORTAL_API_BASE_URL must not be empty")
	}
	switch c.StorageDriver {
	case DriverSQLite, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q (want sqlite, redis or memory)", c.StorageDriver)
	}
	if c.APITimeout <= 0 {
		return errors.New("PORTAL_API_TIMEOUT must be positive")
	}
	return nil
}

// Sealed reports whether stored values are encrypted at rest.
func (c Config) Sealed() bool {
	return c.MasterKey != "" || c.MasterKeyPath != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "30s", "1m")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
