package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	PrimaryKey  string        // Required: base64 HS256 signing key
	PreviousKey string        // Optional: base64 key still accepted for verification after a rotation
	TokenTTL    time.Duration // Bearer token lifetime (default: 10h)

	MaxAttempts          int           // Consecutive failures before an identifier is blocked (default: 5)
	SessionSweepInterval time.Duration // Active session sweep period (default: 1m)

	DatabaseFile string // Path to SQLite database file (default: ./auth.db)
	PepperFile   string // Path to file containing pepper for password hashing (default: ./pepper)
	MFAIssuer    string // Issuer shown in authenticator apps (default: Campus)

	AdminEmail    string // Optional: seeds an admin on an empty directory
	AdminPassword string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after merging in a .env file from the
// working directory when one exists. Variables already set win over .env.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		PrimaryKey:  os.Getenv("AUTH_PRIMARY_KEY"),
		PreviousKey: os.Getenv("AUTH_PREVIOUS_KEY"),
		TokenTTL:    getEnvDurationOrDefault("AUTH_TOKEN_TTL", 10*time.Hour),

		MaxAttempts:          getEnvIntOrDefault("AUTH_MAX_ATTEMPTS", 5),
		SessionSweepInterval: getEnvDurationOrDefault("SESSION_SWEEP_INTERVAL", time.Minute),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		MFAIssuer:    getEnvOrDefault("AUTH_MFA_ISSUER", "Campus"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
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

	// "1h", "30m", "90s"
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
