package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	// SessionKey signs session cookies; SignatureKey signs identifier sets.
	// Separate keys so rotating one does not invalidate the other.
	SessionKey      string
	SignatureKey    string
	SessionDuration time.Duration

	DirectoryURL      string
	DirectoryToken    string
	DirectoryUsername string
	DirectoryPassword string
	DirectoryTimeout  time.Duration

	AWSRegion     string
	SESFromEmail  string
	SESFromName   string
	OperatorEmail string

	RedisURL string

	TokenExpiry      time.Duration
	TokenMaxAttempts int
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:    getEnv("DB_URL", ""),
		DatabasePath:   getEnv("DB_PATH", "./eventsignup.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		SessionKey:      getEnv("SESSION_KEY", "dev-session-key-change-in-production"),
		SignatureKey:    getEnv("SIGNATURE_KEY", "dev-signature-key-change-in-production"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),

		DirectoryURL:      getEnv("DIRECTORY_URL", "https://api.planningcenteronline.com/people/v2"),
		DirectoryToken:    getEnv("DIRECTORY_TOKEN", ""),
		DirectoryUsername: getEnv("DIRECTORY_USERNAME", ""),
		DirectoryPassword: getEnv("DIRECTORY_PASSWORD", ""),
		DirectoryTimeout:  getEnvDuration("DIRECTORY_TIMEOUT", 20*time.Second),

		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:  getEnv("SES_FROM_EMAIL", ""),
		SESFromName:   getEnv("SES_FROM_NAME", "Event Registration"),
		OperatorEmail: getEnv("OPERATOR_EMAIL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		TokenExpiry:      getEnvDuration("TOKEN_EXPIRY", 20*time.Minute),
		TokenMaxAttempts: getEnvInt("TOKEN_MAX_ATTEMPTS", 3),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable or returns a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
