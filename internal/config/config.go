// Package config loads accolade settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds process settings. CLI flags override these values.
type Config struct {
	DBPath    string        `env:"ACCOLADE_DB"          envDefault:"accolade.db"`
	Addr      string        `env:"ACCOLADE_ADDR"        envDefault:":8080"`
	JWTSecret string        `env:"ACCOLADE_JWT_SECRET"`
	JWTIssuer string        `env:"ACCOLADE_JWT_ISSUER"  envDefault:"accolade"`
	TokenTTL  time.Duration `env:"ACCOLADE_TOKEN_TTL"   envDefault:"1h"`
	LogLevel  string        `env:"ACCOLADE_LOG_LEVEL"   envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the given .env files (missing files are skipped), then parses
// the environment. Variables already set in the environment win over files.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Level returns the configured log level, defaulting to Info.
func (c Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}
