// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory settlement queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of settlement workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many queued table ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DefaultRating is assigned to newly registered players.
	DefaultRating int `koanf:"default_rating"`

	// DefaultKFactor applies to games whose ruleset sets no kFactor.
	DefaultKFactor float64 `koanf:"default_k_factor"`

	// RatingClamp bounds every per-table rating delta.
	RatingClamp int `koanf:"rating_clamp"`
}

// New creates a Config populated with defaults. Context is accepted first
// to follow the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          100_000,
		MaxLeaderboardLimit: 100,
		DefaultRating:       1500,
		DefaultKFactor:      24,
		RatingClamp:         48,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive, got %d", ErrInvalidConfig, c.MaxLeaderboardLimit)
	case c.DefaultRating <= 0:
		return fmt.Errorf("%w: default_rating must be positive, got %d", ErrInvalidConfig, c.DefaultRating)
	case c.DefaultKFactor < 0:
		return fmt.Errorf("%w: default_k_factor must not be negative, got %v", ErrInvalidConfig, c.DefaultKFactor)
	case c.RatingClamp < 0:
		return fmt.Errorf("%w: rating_clamp must not be negative, got %d", ErrInvalidConfig, c.RatingClamp)
	}
	return nil
}
