package config

import (
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL string
	APIPort     int
	Environment string
	Debug       bool
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: getEnvOrDefault("DATABASE_URL", "docflow.db"),
		APIPort:     getEnvIntOrDefault("API_PORT", 8080),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		Debug:       getEnvBoolOrDefault("DEBUG", false),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
