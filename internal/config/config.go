// Package config loads service configuration from the environment. A .env
// file in the working directory is picked up automatically in development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"ferreteria/internal/core/tx"
)

// Config is the full service configuration.
type Config struct {
	// AppEnv is "development" or "production".
	AppEnv string
	Port   string

	LogLevel string

	DatabaseURL string
	// DBMaxConns caps the connection pool size.
	DBMaxConns int
	// DefaultIsolation applies when a transaction gives no explicit level.
	DefaultIsolation tx.IsolationLevel

	JWTSecret string

	BackupDir       string
	BackupRetention time.Duration
	BackupCron      string
	BackupInterval  time.Duration
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	isolation, err := tx.ParseIsolationLevel(os.Getenv("TX_DEFAULT_ISOLATION"))
	if err != nil {
		return nil, fmt.Errorf("TX_DEFAULT_ISOLATION: %w", err)
	}

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:      dsn,
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 25),
		DefaultIsolation: isolation,

		JWTSecret: getEnv("JWT_SECRET", ""),

		BackupDir:       getEnv("BACKUP_DIR", "./backups"),
		BackupRetention: getEnvDuration("BACKUP_RETENTION", 30*24*time.Hour),
		BackupCron:      os.Getenv("BACKUP_CRON"),
		BackupInterval:  getEnvDuration("BACKUP_INTERVAL", 0),
	}

	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
