// Package config reads process configuration from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Addr          string
	DBPath        string
	DBDriver      string
	SeedFile      string
	StaticDir     string
	RateLimit     float64
	CORSOrigins   []string
	CSRFKey       string
	ResendKey     string
	ResendFrom    string
	Env           string
	LogLevel      string
	LogFormat     string
	SlowRequestMs int
}

// IsProduction reports whether ACTIVITIES_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (when envFile exists) and then the environment. Variables
// already set in the environment win over .env entries.
// PRE: none
// POST: Returns a config with defaults applied, or a parse error
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	addr := envOrDefault("ACTIVITIES_ADDR", "")
	if addr == "" {
		addr = ":" + envOrDefault("PORT", "3000")
	}

	cfg := Config{
		Addr:        addr,
		DBPath:      envOrDefault("ACTIVITIES_DB_PATH", "database.sqlite"),
		DBDriver:    envOrDefault("ACTIVITIES_DB_DRIVER", "sqlite"),
		SeedFile:    os.Getenv("ACTIVITIES_SEED_FILE"),
		StaticDir:   os.Getenv("ACTIVITIES_STATIC_DIR"),
		CORSOrigins: splitList(envOrDefault("ACTIVITIES_CORS_ORIGINS", "*")),
		CSRFKey:     os.Getenv("ACTIVITIES_CSRF_KEY"),
		ResendKey:   os.Getenv("ACTIVITIES_RESEND_KEY"),
		ResendFrom:  envOrDefault("ACTIVITIES_RESEND_FROM", "Activities Hub <noreply@example.com>"),
		Env:         envOrDefault("ACTIVITIES_ENV", "development"),
		LogLevel:    envOrDefault("ACTIVITIES_LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("ACTIVITIES_LOG_FORMAT", "text"),
	}

	rate, err := strconv.ParseFloat(envOrDefault("ACTIVITIES_RATE_LIMIT", "10"), 64)
	if err != nil || rate < 0 {
		return Config{}, fmt.Errorf("ACTIVITIES_RATE_LIMIT must be a non-negative number, got %q", os.Getenv("ACTIVITIES_RATE_LIMIT"))
	}
	cfg.RateLimit = rate

	slow, err := strconv.Atoi(envOrDefault("ACTIVITIES_SLOW_REQUEST_MS", "200"))
	if err != nil || slow <= 0 {
		return Config{}, fmt.Errorf("ACTIVITIES_SLOW_REQUEST_MS must be a positive integer, got %q", os.Getenv("ACTIVITIES_SLOW_REQUEST_MS"))
	}
	cfg.SlowRequestMs = slow

	switch cfg.DBDriver {
	case "sqlite", "sqlite3", "memory":
	default:
		return Config{}, fmt.Errorf("ACTIVITIES_DB_DRIVER must be sqlite, sqlite3 or memory, got %q", cfg.DBDriver)
	}

	return cfg, nil
}

// NewLogger builds the process logger from LogLevel and LogFormat.
// Unknown levels fall back to info.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
