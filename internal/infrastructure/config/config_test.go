package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Registry.Source != "memory" {
		t.Errorf("Registry.Source = %q, want memory", cfg.Registry.Source)
	}
	if cfg.Pipeline.SampleCountPerPair != 2000 {
		t.Errorf("SampleCountPerPair = %d, want default 2000", cfg.Pipeline.SampleCountPerPair)
	}
	if len(cfg.Sampling.Axes) == 0 {
		t.Error("expected a default sampling axis schema")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlap.yaml")
	content := `
pipeline:
  sampleCountPerPair: 100
  maxCandidatePairs: 5
sampling:
  seed: 99
registry:
  source: sqlite
  sqlite:
    databasePath: /tmp/test-prototypes.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pipeline.SampleCountPerPair != 100 {
		t.Errorf("SampleCountPerPair = %d, want 100", cfg.Pipeline.SampleCountPerPair)
	}
	if cfg.Pipeline.MaxCandidatePairs != 5 {
		t.Errorf("MaxCandidatePairs = %d, want 5", cfg.Pipeline.MaxCandidatePairs)
	}
	// Untouched keys keep their defaults.
	if cfg.Pipeline.DivergenceExamplesK != 5 {
		t.Errorf("DivergenceExamplesK = %d, want default 5", cfg.Pipeline.DivergenceExamplesK)
	}
	if cfg.Sampling.Seed != 99 {
		t.Errorf("Sampling.Seed = %d, want 99", cfg.Sampling.Seed)
	}
	if cfg.Registry.Source != "sqlite" || cfg.Registry.SQLite.DatabasePath != "/tmp/test-prototypes.db" {
		t.Errorf("registry settings = %+v, want sqlite with configured path", cfg.Registry)
	}
}

func TestLoadRejectsInvalidPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlap.yaml")
	content := "pipeline:\n  maxCandidatePairs: -1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for negative maxCandidatePairs")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
