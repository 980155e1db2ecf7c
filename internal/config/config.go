package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Security  SecurityConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig holds API-key and secret-encryption settings.
// FernetKey is a base64 fernet key used to encrypt provider API tokens
// at rest; empty disables provider-token storage.
type SecurityConfig struct {
	InternalAPIKey string
	FernetKey      string
}

// SchedulerConfig controls the nightly FX cache refresh job.
type SchedulerConfig struct {
	RefreshEnabled bool
	RefreshCron    string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/performance_engine.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Security: SecurityConfig{
			InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),
			FernetKey:      getEnv("FERNET_KEY", ""),
		},
		Scheduler: SchedulerConfig{
			RefreshEnabled: strings.EqualFold(getEnv("FX_REFRESH_ENABLED", "false"), "true"),
			RefreshCron:    getEnv("FX_REFRESH_CRON", "0 3 * * *"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
