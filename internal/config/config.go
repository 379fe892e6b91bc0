package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Import   ImportConfig
	Auth     AuthConfig
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

// ImportConfig holds settings for the bulk data importer.
type ImportConfig struct {
	// MaxUploadBytes caps the size of uploaded source files.
	MaxUploadBytes int64
	// DefaultBatchSize is used when an upload does not specify one.
	DefaultBatchSize int
	// NavWatchDir, when set, is scanned on a schedule for NAV files to import.
	NavWatchDir string
	// NavSchedule is a cron expression for the scheduled NAV import.
	NavSchedule string
}

// AuthConfig holds token authentication configuration.
// When Key is empty, import endpoints are unprotected (development mode).
type AuthConfig struct {
	Key      string // base64-encoded fernet key
	TokenTTL time.Duration
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	maxUpload, err := getEnvInt64("IMPORT_MAX_UPLOAD_BYTES", 64<<20)
	if err != nil {
		return nil, err
	}
	batchSize, err := getEnvInt("IMPORT_DEFAULT_BATCH_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("IMPORT_DEFAULT_BATCH_SIZE must be >= 1, got %d", batchSize)
	}
	tokenTTL, err := getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/mfdata.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Import: ImportConfig{
			MaxUploadBytes:   maxUpload,
			DefaultBatchSize: batchSize,
			NavWatchDir:      getEnv("NAV_WATCH_DIR", ""),
			NavSchedule:      getEnv("NAV_IMPORT_SCHEDULE", "0 6 * * *"),
		},
		Auth: AuthConfig{
			Key:      getEnv("AUTH_TOKEN_KEY", ""),
			TokenTTL: tokenTTL,
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

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return parsed, nil
}
