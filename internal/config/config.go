package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Redis    RedisConfig
	Simulate SimulateConfig
}

// RedisConfig holds Redis-specific configuration. An empty Addr means the
// engine runs on in-memory repositories.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SimulateConfig holds simulator-specific configuration
type SimulateConfig struct {
	Rolls   int
	Workers int
	Seed    int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Simulate: SimulateConfig{
			Rolls:   getEnvAsIntOrDefault("SIMULATE_ROLLS", 100000),
			Workers: getEnvAsIntOrDefault("SIMULATE_WORKERS", 4),
			Seed:    int64(getEnvAsIntOrDefault("SIMULATE_SEED", 0)),
		},
	}

	return cfg, nil
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
