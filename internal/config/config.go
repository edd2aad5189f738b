package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port               string
	Env                string
	DatabaseDSN        string
	JWTSecret          string
	JWTExpiry          time.Duration
	UpstreamBaseURL    string
	UpstreamAPIKey     string
	DefaultMaxSearches int
}

func Load() Config {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		DatabaseDSN:        getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/godeye?parseTime=true&clientFoundRows=true"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTExpiry:          24 * time.Hour,
		UpstreamBaseURL:    getEnv("OATHNET_BASE_URL", "https://oathnet.org/api/service"),
		UpstreamAPIKey:     os.Getenv("OATHNET_API_KEY"),
		DefaultMaxSearches: getEnvInt("DEFAULT_MAX_SEARCHES", 10),
	}

	if cfg.Env == "production" {
		if cfg.JWTSecret == "dev-secret-change-in-production" {
			slog.Error("JWT_SECRET must be set in production environment")
			os.Exit(1)
		}
		if cfg.UpstreamAPIKey == "" {
			slog.Error("OATHNET_API_KEY must be set in production environment")
			os.Exit(1)
		}
	} else if cfg.UpstreamAPIKey == "" {
		slog.Warn("OATHNET_API_KEY not set — upstream lookups will be rejected")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("ignoring invalid integer env value", "key", key, "value", v)
		return fallback
	}
	return n
}
