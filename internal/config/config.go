// Package config handles loading runtime configuration for the F1 fan site API.
// Settings come from environment variables (optionally seeded from a .env file),
// following the same 12-factor approach everywhere: one binary, different env per deployment.
// The fallback payloads served when data files are missing live in fallbacks.go.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	// godotenv reads a .env file and loads its key=value pairs into the process environment.
	// Handy in development; in production the platform sets real env vars instead.
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port     string // TCP port the HTTP server listens on (e.g. "8080")
	Env      string // "development", "staging" or "production"
	LogLevel string // zap level name: "debug", "info", "warn", "error"

	DataDir    string        // Directory holding the generated JSON files (e.g. "public/data")
	StaleAfter time.Duration // Files older than this are served as unavailable; 0 disables the check

	DatabaseURL   string // Optional PostgreSQL DSN for the upload audit log; empty keeps it in memory
	MigrationsDir string // Directory with the SQL migration files

	AdminJWTSecret string // HS256 secret for admin tokens; empty disables the admin routes

	CacheDir        string        // Scratch directory cleaned by the maintenance job
	CacheMaxAge     time.Duration // Cache files older than this are deleted
	CleanupSchedule string        // Cron spec for the maintenance jobs (e.g. "@daily")

	StandingsSeason int // Season used to pick driver-/constructor-standings-<season>.json

	Fallbacks *Fallbacks // Payloads served when live data isn't available
}

// Load reads configuration from environment variables and returns a populated Config.
// A missing .env file is fine (the error is ignored on purpose); a malformed value
// or an unreadable FALLBACKS_FILE is not, and is returned as an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenv("PORT", "8080"),
		Env:             getenv("ENV", "development"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		DataDir:         getenv("DATA_DIR", "public/data"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MigrationsDir:   getenv("MIGRATIONS_DIR", "migrations"),
		AdminJWTSecret:  os.Getenv("ADMIN_JWT_SECRET"),
		CacheDir:        getenv("CACHE_DIR", ".cache"),
		CleanupSchedule: getenv("CLEANUP_SCHEDULE", "@daily"),
	}

	var err error
	if cfg.StaleAfter, err = durationEnv("DATA_STALE_AFTER", 0); err != nil {
		return nil, err
	}
	if cfg.CacheMaxAge, err = durationEnv("CACHE_MAX_AGE", 7*24*time.Hour); err != nil {
		return nil, err
	}

	// The standings files are named after the season, so default to the current year.
	cfg.StandingsSeason = time.Now().Year()
	if v := os.Getenv("STANDINGS_SEASON"); v != "" {
		season, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("STANDINGS_SEASON: %w", err)
		}
		cfg.StandingsSeason = season
	}

	cfg.Fallbacks, err = LoadFallbacks(os.Getenv("FALLBACKS_FILE"))
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// AdminEnabled reports whether the admin upload routes should be mounted.
func (c *Config) AdminEnabled() bool {
	return c.AdminJWTSecret != ""
}

// getenv returns the value of key, or def when the variable is unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// durationEnv parses key as a Go duration ("90s", "1h30m"), returning def when unset.
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}
