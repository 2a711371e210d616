// Package config loads all tunable parameters from environment variables
// with defaults that let the binary run locally without excessive setup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// RedisURL is optional; when empty the search cache and the Redis
	// event channel are disabled.
	RedisURL     string
	EventChannel string
	CacheTTL     time.Duration

	JWTSecret string
	LogLevel  string
}

func defaultConfig() Config {
	return Config{
		Port:         "8080",
		DBHost:       "localhost",
		DBPort:       "5432",
		EventChannel: "ride:updates",
		CacheTTL:     30 * time.Second,
		LogLevel:     "info",
	}
}

func Load() (Config, error) {
	cfg := defaultConfig()
	var errs []error

	setStringFromEnv(&cfg.Port, "PORT")
	setStringFromEnv(&cfg.DBHost, "DB_HOST")
	setStringFromEnv(&cfg.DBPort, "DB_PORT")
	setStringFromEnv(&cfg.DBUser, "DB_USER")
	setStringFromEnv(&cfg.DBPassword, "DB_PASSWORD")
	setStringFromEnv(&cfg.DBName, "DB_NAME")
	setStringFromEnv(&cfg.RedisURL, "REDIS_URL")
	setStringFromEnv(&cfg.EventChannel, "EVENT_CHANNEL")
	setStringFromEnv(&cfg.JWTSecret, "JWT_SECRET")

	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid CACHE_TTL: %w", err))
		} else {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("JWT_SECRET is required"))
	}
	if cfg.DBUser == "" {
		errs = append(errs, fmt.Errorf("DB_USER is required"))
	}
	if cfg.DBName == "" {
		errs = append(errs, fmt.Errorf("DB_NAME is required"))
	}

	return cfg, errors.Join(errs...)
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}
