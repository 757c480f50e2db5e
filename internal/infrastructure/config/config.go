// Package config loads analyzer configuration from YAML files, merging the
// file contents over built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	appOverlap "github.com/blackms/prototype-overlap-go/internal/application/overlap"
	"github.com/blackms/prototype-overlap-go/internal/infrastructure/registry"
	"github.com/blackms/prototype-overlap-go/internal/infrastructure/sampling"
)

// FileConfig is the on-disk configuration shape: pipeline thresholds plus
// sampling schema and registry settings.
type FileConfig struct {
	Pipeline appOverlap.Config `yaml:"pipeline"`
	Sampling SamplingConfig    `yaml:"sampling"`
	Registry RegistrySettings  `yaml:"registry"`
}

// SamplingConfig configures the random state generator.
type SamplingConfig struct {
	Axes []sampling.AxisSpec `yaml:"axes"`
	Seed int64               `yaml:"seed"`
}

// RegistrySettings selects and configures the prototype source.
type RegistrySettings struct {
	// Source is one of "memory", "sqlite", or "postgres".
	Source   string                          `yaml:"source"`
	SQLite   registry.SQLiteRegistryConfig   `yaml:"sqlite"`
	Postgres registry.PostgresRegistryConfig `yaml:"postgres"`
}

// Default returns the built-in configuration.
func Default() FileConfig {
	return FileConfig{
		Pipeline: appOverlap.DefaultConfig(),
		Sampling: SamplingConfig{
			Axes: sampling.DefaultAxes(),
			Seed: 1,
		},
		Registry: RegistrySettings{Source: "memory"},
	}
}

// Load reads a YAML configuration file, merged over Default. An empty path
// returns Default unchanged.
func Load(path string) (FileConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := cfg.Pipeline.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}
