// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Defaults live in New(); Load layers an optional YAML file and env vars
//     on top and never mutates defaults in place.
//   - Engine configuration (weights, constraints, thresholds, ranking)
//     reuses the koanf-tagged structs owned by the domain packages so the
//     documented defaults are defined exactly once.
//   - External errors are wrapped via this package's error helpers.
package config

import (
	"runtime"

	"github.com/caremesh/matchd/internal/domain/eligibility"
	"github.com/caremesh/matchd/internal/domain/matching"
	"github.com/caremesh/matchd/internal/domain/ranking"
	"github.com/caremesh/matchd/internal/domain/scoring"
)

// Default runtime sizing constants. Match runs are CPU-bound, so the worker
// pool stays close to the core count.
const (
	defaultWorkerMultiplier = 2
	defaultQueueSize        = 10_000
	defaultDedupeSize       = 100_000
)

// EngineConfig groups the per-invocation matching engine configuration.
type EngineConfig struct {
	Weights     scoring.Weights         `koanf:"weights"`
	Constraints eligibility.Constraints `koanf:"constraints"`
	Thresholds  matching.Thresholds     `koanf:"thresholds"`
	Ranking     ranking.Config          `koanf:"ranking"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// JobQueueSize bounds the in-memory match-job queue.
	JobQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of match workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the job deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// Engine holds the matching engine configuration.
	Engine EngineConfig `koanf:"engine"`
}

// New creates a Config populated with the documented defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		Addr:         ":9080",
		JobQueueSize: defaultQueueSize,
		WorkerCount:  runtime.NumCPU() * defaultWorkerMultiplier,
		DedupeSize:   defaultDedupeSize,
		Engine: EngineConfig{
			Weights:     scoring.DefaultWeights(),
			Constraints: eligibility.DefaultConstraints(),
			Thresholds:  matching.DefaultThresholds(),
			Ranking:     ranking.DefaultConfig(),
		},
	}
}
