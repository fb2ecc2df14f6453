package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"eventdesk/internal/client"
	"eventdesk/internal/mockapi"
	"eventdesk/internal/session"
)

// Config holds the application configuration
type Config struct {
	LogLevel  string
	LogFormat string

	API     client.Config
	Session session.Config
	Mock    mockapi.Config
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		API: client.Config{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
			Timeout: time.Duration(getEnvInt("API_TIMEOUT_SEC", 30)) * time.Second,
		},

		Session: session.Config{
			Path: getEnv("SESSION_PATH", defaultSessionPath()),
		},

		Mock: mockapi.Config{
			Port:    getEnv("MOCK_PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
	}
}

// defaultSessionPath places the session file under the user config dir,
// falling back to the working directory when none is available.
func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "eventdesk-session.db"
	}
	return filepath.Join(dir, "eventdesk", "session.db")
}

// getEnv returns the environment variable value or the default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of the environment variable
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
