// Package config loads the simulation configuration consumed by the
// CLI. The core itself only ever receives the plain struct.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the simulation configuration.
type Config struct {
	// Seed seeds the single simulation PRNG.
	Seed int64 `yaml:"seed"`
	// Pets is the number of pets created at startup.
	Pets int `yaml:"pets"`
	// Ticks bounds the run; 0 runs until interrupted.
	Ticks int `yaml:"ticks"`
	// SnapshotPath is the SQLite snapshot database location.
	SnapshotPath string `yaml:"snapshot_path"`
	// SnapshotEvery saves snapshots every N ticks; 0 disables.
	SnapshotEvery int `yaml:"snapshot_every"`
	// MetricsWindow caps the metrics collector sample history.
	MetricsWindow int `yaml:"metrics_window"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Seed:          42,
		Pets:          5,
		Ticks:         0,
		SnapshotPath:  "pets.db",
		SnapshotEvery: 100,
		MetricsWindow: 1000,
		LogLevel:      "info",
	}
}

// Load reads a YAML configuration file, filling unset fields with
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Pets < 0 {
		return cfg, fmt.Errorf("config %s: pets must be non-negative", path)
	}
	return cfg, nil
}
