// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full service configuration.
type Config struct {
	AppPort string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	TokenSecret string
	TokenTTL    time.Duration

	ProfileCacheTTL time.Duration
	PostsCacheTTL   time.Duration

	AuthMaxAttempts int
	AuthRateWindow  time.Duration

	RequestTimeout time.Duration
}

// Load reads the environment and applies defaults. It returns an error
// for missing security-critical settings; everything else defaults.
func Load() (Config, error) {
	cfg := Config{
		AppPort:         getenv("APP_PORT", "8080"),
		DatabaseDSN:     os.Getenv("DATABASE_DSN"),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		TokenSecret:     os.Getenv("TOKEN_SECRET"),
		TokenTTL:        getduration("TOKEN_TTL", 24*time.Hour),
		ProfileCacheTTL: getduration("PROFILE_CACHE_TTL", time.Hour),
		PostsCacheTTL:   getduration("POSTS_CACHE_TTL", 30*time.Minute),
		AuthMaxAttempts: getint("AUTH_MAX_ATTEMPTS", 5),
		AuthRateWindow:  getduration("AUTH_RATE_WINDOW", 15*time.Minute),
		RequestTimeout:  getduration("REQUEST_TIMEOUT", 15*time.Second),
	}

	if cfg.DatabaseDSN == "" {
		return cfg, errors.New("DATABASE_DSN is required")
	}
	if cfg.TokenSecret == "" {
		return cfg, errors.New("TOKEN_SECRET is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: invalid %s %q, using %s\n", key, v, fallback)
		return fallback
	}
	return d
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: invalid %s %q, using %d\n", key, v, fallback)
		return fallback
	}
	return n
}
