package config

import (
	"os"
	"strconv"
	"time"

	"boxoffice/internal/external"
	"boxoffice/internal/handoff"
	"boxoffice/internal/messaging"
	"boxoffice/internal/session"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	Theatre external.TheatreConfig
	Handoff handoff.Config
	NATS    messaging.Config
	Session session.Config
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Theatre: external.TheatreConfig{
			BaseURL: getEnv("THEATRE_BACKEND_URL", "http://localhost:8081"),
			Timeout: time.Duration(getEnvInt("THEATRE_TIMEOUT_SEC", 30)) * time.Second,
		},

		Handoff: handoff.Config{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("HANDOFF_TTL_MIN", 30)) * time.Minute,
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "boxoffice"),
			ClientID:  getEnv("NATS_CLIENT_ID", "boxoffice-api"),
			Enabled:   getEnv("NATS_ENABLED", "false") == "true",
		},

		Session: session.Config{
			IdleTTL:       time.Duration(getEnvInt("SESSION_IDLE_TTL_MIN", 30)) * time.Minute,
			SweepInterval: time.Duration(getEnvInt("SESSION_SWEEP_INTERVAL_SEC", 60)) * time.Second,
		},
	}
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable value or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
