package overlap

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig should validate: %v", err)
	}
}

func TestConfigValidateNamesOffendingKey(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantKey string
	}{
		{"negative epsilon", func(c *Config) { c.ActiveAxisEpsilon = -0.1 }, "activeAxisEpsilon"},
		{"jaccard out of range", func(c *Config) { c.JaccardEmptySetValue = 1.5 }, "jaccardEmptySetValue"},
		{"cosine out of range", func(c *Config) { c.CandidateMinCosineSimilarity = 2 }, "candidateMinCosineSimilarity"},
		{"zero max pairs", func(c *Config) { c.MaxCandidatePairs = 0 }, "maxCandidatePairs"},
		{"zero sample count", func(c *Config) { c.SampleCountPerPair = 0 }, "sampleCountPerPair"},
		{"negative dominance delta", func(c *Config) { c.DominanceDelta = -1 }, "dominanceDelta"},
		{"negative divergence K", func(c *Config) { c.DivergenceExamplesK = -1 }, "divergenceExamplesK"},
		{"dominance threshold out of range", func(c *Config) { c.MinDominanceForSubsumption = 1.2 }, "minDominanceForSubsumption"},
		{"coverage floor out of range", func(c *Config) { c.AxisGapCoverageFloor = -0.1 }, "axisGapCoverageFloor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			err := config.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantKey) {
				t.Errorf("error %q does not name key %q", err.Error(), tt.wantKey)
			}
		})
	}
}
