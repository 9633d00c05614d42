package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Port           string
	DatabaseURL    string
	RedisURL       string
	UseMemoryStore bool
	LogLevel       string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		UseMemoryStore: getEnvBool("USE_MEMORY_STORE", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if !cfg.UseMemoryStore && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required unless USE_MEMORY_STORE is set")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultVal
	}
	return parsed
}
