// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/talgya/civsim/internal/engine"
	"github.com/talgya/civsim/internal/world"
)

// Run modes.
const (
	ModeScripted = "scripted" // Both sides follow the scripted policy
	ModeAI       = "ai"       // Both sides ask a decision provider
)

// Config holds every setting of a civsim run.
type Config struct {
	Seed     int64  `env:"CIVSIM_SEED" envDefault:"42"`
	MapSize  int    `env:"CIVSIM_MAP_SIZE" envDefault:"10"`
	Mode     string `env:"CIVSIM_MODE" envDefault:"scripted"`
	MaxTurns int    `env:"CIVSIM_MAX_TURNS" envDefault:"0"` // 0 = mode default
	Terrain  string `env:"CIVSIM_TERRAIN" envDefault:"uniform"`

	SavePath string `env:"CIVSIM_SAVE_PATH" envDefault:"data/civsim.json"`
	DBPath   string `env:"CIVSIM_DB_PATH"`
	Load     bool   `env:"CIVSIM_LOAD" envDefault:"false"`

	DecisionTimeout time.Duration `env:"CIVSIM_DECISION_TIMEOUT" envDefault:"20s"`
	AnthropicKey    string        `env:"ANTHROPIC_API_KEY"`
	LLMModel        string        `env:"CIVSIM_LLM_MODEL"`

	APIAddr string `env:"CIVSIM_API_ADDR"` // Empty disables the HTTP API

	LogLevel string `env:"CIVSIM_LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"CIVSIM_LOG_FILE"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.MapSize < 2 {
		return fmt.Errorf("CIVSIM_MAP_SIZE must be at least 2, got %d", c.MapSize)
	}
	if c.MaxTurns < 0 {
		return fmt.Errorf("CIVSIM_MAX_TURNS must not be negative, got %d", c.MaxTurns)
	}
	switch c.Mode {
	case ModeScripted, ModeAI:
	default:
		return fmt.Errorf("CIVSIM_MODE must be %q or %q, got %q", ModeScripted, ModeAI, c.Mode)
	}
	switch world.GenMode(c.Terrain) {
	case world.GenUniform, world.GenNoise:
	default:
		return fmt.Errorf("CIVSIM_TERRAIN must be %q or %q, got %q", world.GenUniform, world.GenNoise, c.Terrain)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// MaxTurnsFor resolves the run length, applying the mode default.
func (c Config) MaxTurnsFor() int {
	if c.MaxTurns > 0 {
		return c.MaxTurns
	}
	if c.Mode == ModeAI {
		return engine.MaxTurnsAI
	}
	return engine.MaxTurnsScripted
}

// GenConfig returns world generation parameters for this run.
func (c Config) GenConfig() world.GenConfig {
	gen := world.DefaultGenConfig()
	gen.Size = c.MapSize
	gen.Mode = world.GenMode(c.Terrain)
	gen.Seed = c.Seed
	return gen
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("CIVSIM_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
