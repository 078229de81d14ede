package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the service configuration
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	// Store configuration
	StoreDriver      string
	SQLitePath       string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBConnectRetries int
	DBRetryDelay     time.Duration

	// Circuit breaker around SQL stores
	BreakerMaxFailures int
	BreakerTimeout     time.Duration
	BreakerWindow      time.Duration

	ShutdownTimeout time.Duration
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "release"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		StoreDriver: getEnv("STORE_DRIVER", DriverMemory),
		SQLitePath:  getEnv("SQLITE_PATH", "file::memory:?cache=shared"),
		DBHost:      getEnv("DB_HOST", "postgres"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "program"),
		DBPassword:  getEnv("DB_PASSWORD", "test"),
		DBName:      getEnv("DB_NAME", "books"),
	}

	var err error
	if cfg.DBConnectRetries, err = getEnvInt("DB_CONNECT_RETRIES", 10); err != nil {
		return nil, err
	}
	if cfg.DBRetryDelay, err = getEnvDuration("DB_RETRY_DELAY", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.BreakerMaxFailures, err = getEnvInt("BREAKER_MAX_FAILURES", 5); err != nil {
		return nil, err
	}
	if cfg.BreakerTimeout, err = getEnvDuration("BREAKER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.BreakerWindow, err = getEnvDuration("BREAKER_WINDOW", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return nil, errors.Errorf("invalid STORE_DRIVER %q (want memory, sqlite or postgres)", cfg.StoreDriver)
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return nil, errors.Errorf("invalid GIN_MODE %q", cfg.GinMode)
	}
	if cfg.DBConnectRetries < 1 {
		return nil, errors.New("DB_CONNECT_RETRIES must be at least 1")
	}
	if cfg.BreakerMaxFailures < 0 {
		return nil, errors.New("BREAKER_MAX_FAILURES cannot be negative")
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return d, nil
}
