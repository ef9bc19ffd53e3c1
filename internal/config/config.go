package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tatianab/orb-cult/internal/rules"
)

// Storage backends selectable with CULT_STORAGE.
const (
	StorageYAML   = "yaml"
	StorageBadger = "badger"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	Storage string `env:"CULT_STORAGE" envDefault:"yaml"`
	SaveDir string `env:"CULT_SAVE_DIR" envDefault:".saves"`

	Port int `env:"PORT" envDefault:"3000"`

	LogLevel  string `env:"CULT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"CULT_LOG_FORMAT" envDefault:"text"`

	// Seed fixes the random source. Zero draws a fresh seed.
	Seed int64 `env:"CULT_SEED"`

	RitualCooldown     time.Duration `env:"CULT_RITUAL_COOLDOWN" envDefault:"2h"`
	MeditationCooldown time.Duration `env:"CULT_MEDITATION_COOLDOWN" envDefault:"4h"`
	RarityThresholds   []int         `env:"CULT_RARITY_THRESHOLDS" envDefault:"0,50,150,300" envSeparator:","`

	// AdventureFile replaces the built-in story when set.
	AdventureFile string `env:"CULT_ADVENTURE_FILE"`

	ActionRate  float64 `env:"CULT_ACTION_RATE" envDefault:"5"`
	ActionBurst int     `env:"CULT_ACTION_BURST" envDefault:"10"`
	DedupWindow int     `env:"CULT_DEDUP_WINDOW" envDefault:"1024"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env parsing cannot.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage {
	case StorageYAML, StorageBadger, StorageSQLite, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("CULT_STORAGE: unknown backend %q", c.Storage))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d out of range", c.Port))
	}
	if c.RitualCooldown < 0 || c.MeditationCooldown < 0 {
		errs = append(errs, errors.New("cooldowns must not be negative"))
	}
	if _, err := c.Thresholds(); err != nil {
		errs = append(errs, fmt.Errorf("CULT_RARITY_THRESHOLDS: %w", err))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("CULT_LOG_LEVEL: %w", err))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("CULT_LOG_FORMAT: must be text or json, got %q", c.LogFormat))
	}
	if c.ActionRate <= 0 || c.ActionBurst <= 0 {
		errs = append(errs, errors.New("CULT_ACTION_RATE and CULT_ACTION_BURST must be positive"))
	}
	if c.DedupWindow < 0 {
		errs = append(errs, errors.New("CULT_DEDUP_WINDOW must not be negative"))
	}
	return errors.Join(errs...)
}

// Thresholds returns the favor band boundaries.
func (c *Config) Thresholds() (rules.Thresholds, error) {
	var th rules.Thresholds
	if len(c.RarityThresholds) != len(th) {
		return th, fmt.Errorf("want %d values, got %d", len(th), len(c.RarityThresholds))
	}
	copy(th[:], c.RarityThresholds)
	return th, th.Validate()
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(strings.TrimSpace(s)))
	return l, err
}

// StoragePath returns where the selected backend keeps its data.
func (c *Config) StoragePath() string {
	switch c.Storage {
	case StorageBadger:
		return filepath.Join(c.SaveDir, "badger")
	case StorageSQLite:
		return filepath.Join(c.SaveDir, "cult.db")
	default:
		return c.SaveDir
	}
}

// OracleEnabled reports whether questions go to Gemini.
func (c *Config) OracleEnabled() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}
