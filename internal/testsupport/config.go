package testsupport

import (
	"path/filepath"
	"testing"

	"talentpipe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithCapacityPolicy overrides the assignment capacity policy on the test config.
func WithCapacityPolicy(policy string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Assignments.CapacityPolicy = policy
	}
}

// WithAlertThresholds overrides the workload alert thresholds on the test config.
func WithAlertThresholds(overloaded, underutilized float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Alerts.OverloadedThreshold = overloaded
		cfg.Alerts.UnderutilizedThreshold = underutilized
	}
}
