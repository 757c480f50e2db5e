// Package overlap provides the staged redundancy-detection services:
// candidate filtering, behavioral evaluation, classification, and the
// orchestrating analyzer.
package overlap

import (
	"fmt"

	domainOverlap "github.com/blackms/prototype-overlap-go/internal/domain/overlap"
)

// Config configures the analysis pipeline. All thresholds live here; the
// pipeline code never hard-codes a boundary.
type Config struct {
	// ActiveAxisEpsilon is the minimum weight magnitude for an axis to count
	// as active.
	ActiveAxisEpsilon float64 `json:"activeAxisEpsilon" yaml:"activeAxisEpsilon"`

	// JaccardEmptySetValue is the overlap assigned when both active-axis sets
	// are empty. 1.0 treats "both structurally inactive" as full overlap.
	JaccardEmptySetValue float64 `json:"jaccardEmptySetValue" yaml:"jaccardEmptySetValue"`

	// SoftSignThreshold is the magnitude at or below which a weight is
	// sign-neutral.
	SoftSignThreshold float64 `json:"softSignThreshold" yaml:"softSignThreshold"`

	// Route A admission thresholds, all compared with >=.
	CandidateMinActiveAxisOverlap float64 `json:"candidateMinActiveAxisOverlap" yaml:"candidateMinActiveAxisOverlap"`
	CandidateMinSignAgreement     float64 `json:"candidateMinSignAgreement" yaml:"candidateMinSignAgreement"`
	CandidateMinCosineSimilarity  float64 `json:"candidateMinCosineSimilarity" yaml:"candidateMinCosineSimilarity"`

	// EnableMultiRoute admits pairs rejected by Route A through the optional
	// gate-similarity (B) and behavioral-prescan (C) filters.
	EnableMultiRoute bool `json:"enableMultiRoute" yaml:"enableMultiRoute"`

	// MaxCandidatePairs caps how many candidate pairs reach Stage B.
	MaxCandidatePairs int `json:"maxCandidatePairs" yaml:"maxCandidatePairs"`

	// SampleCountPerPair is the Monte Carlo sample budget per pair.
	SampleCountPerPair int `json:"sampleCountPerPair" yaml:"sampleCountPerPair"`

	// DominanceDelta is the intensity margin beyond which one prototype
	// counts as dominating a sample.
	DominanceDelta float64 `json:"dominanceDelta" yaml:"dominanceDelta"`

	// DivergenceExamplesK caps how many worst-divergence examples are kept.
	DivergenceExamplesK int `json:"divergenceExamplesK" yaml:"divergenceExamplesK"`

	// Classifier thresholds.
	MergeMaxExclusiveRate      float64 `json:"mergeMaxExclusiveRate" yaml:"mergeMaxExclusiveRate"`
	MergeMinCorrelation        float64 `json:"mergeMinCorrelation" yaml:"mergeMinCorrelation"`
	MergeMaxMeanAbsDiff        float64 `json:"mergeMaxMeanAbsDiff" yaml:"mergeMaxMeanAbsDiff"`
	MergeMaxDominance          float64 `json:"mergeMaxDominance" yaml:"mergeMaxDominance"`
	SubsumeMaxExclusiveRate    float64 `json:"subsumeMaxExclusiveRate" yaml:"subsumeMaxExclusiveRate"`
	SubsumeMinCorrelation      float64 `json:"subsumeMinCorrelation" yaml:"subsumeMinCorrelation"`
	MinDominanceForSubsumption float64 `json:"minDominanceForSubsumption" yaml:"minDominanceForSubsumption"`

	// Route B/C admission knobs.
	RouteBMinSharedGateAxes int     `json:"routeBMinSharedGateAxes" yaml:"routeBMinSharedGateAxes"`
	RouteCPrescanSamples    int     `json:"routeCPrescanSamples" yaml:"routeCPrescanSamples"`
	RouteCMinCoactivation   float64 `json:"routeCMinCoactivation" yaml:"routeCMinCoactivation"`

	// EnableAxisGapAnalysis toggles the optional family-wide coverage pass.
	EnableAxisGapAnalysis bool `json:"enableAxisGapAnalysis" yaml:"enableAxisGapAnalysis"`

	// AxisGapCoverageFloor is the coverage rate below which an axis is
	// flagged.
	AxisGapCoverageFloor float64 `json:"axisGapCoverageFloor" yaml:"axisGapCoverageFloor"`

	// BandingSuggestionTypes lists the classification types for which gate
	// banding suggestions are computed.
	BandingSuggestionTypes []domainOverlap.ClassificationType `json:"bandingSuggestionTypes" yaml:"bandingSuggestionTypes"`

	// UseSharedSamplePool evaluates all prototypes once against a shared
	// context pool instead of sampling per pair.
	UseSharedSamplePool bool `json:"useSharedSamplePool" yaml:"useSharedSamplePool"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		ActiveAxisEpsilon:             0.1,
		JaccardEmptySetValue:          1.0,
		SoftSignThreshold:             0.05,
		CandidateMinActiveAxisOverlap: 0.5,
		CandidateMinSignAgreement:     0.7,
		CandidateMinCosineSimilarity:  0.85,
		EnableMultiRoute:              true,
		MaxCandidatePairs:             50,
		SampleCountPerPair:            2000,
		DominanceDelta:                0.05,
		DivergenceExamplesK:           5,
		MergeMaxExclusiveRate:         0.05,
		MergeMinCorrelation:           0.9,
		MergeMaxMeanAbsDiff:           0.1,
		MergeMaxDominance:             0.5,
		SubsumeMaxExclusiveRate:       0.1,
		SubsumeMinCorrelation:         0.6,
		MinDominanceForSubsumption:    0.7,
		RouteBMinSharedGateAxes:       1,
		RouteCPrescanSamples:          64,
		RouteCMinCoactivation:         0.2,
		EnableAxisGapAnalysis:         true,
		AxisGapCoverageFloor:          0.2,
		BandingSuggestionTypes: []domainOverlap.ClassificationType{
			domainOverlap.ClassSubsumedRecommended,
		},
	}
}

// Validate checks required keys and value ranges, naming the offending key.
func (c *Config) Validate() error {
	if c.ActiveAxisEpsilon < 0 {
		return fmt.Errorf("config key activeAxisEpsilon must be >= 0, got %v", c.ActiveAxisEpsilon)
	}
	if c.JaccardEmptySetValue < 0 || c.JaccardEmptySetValue > 1 {
		return fmt.Errorf("config key jaccardEmptySetValue must be in [0, 1], got %v", c.JaccardEmptySetValue)
	}
	if c.SoftSignThreshold < 0 {
		return fmt.Errorf("config key softSignThreshold must be >= 0, got %v", c.SoftSignThreshold)
	}
	if c.CandidateMinCosineSimilarity < -1 || c.CandidateMinCosineSimilarity > 1 {
		return fmt.Errorf("config key candidateMinCosineSimilarity must be in [-1, 1], got %v", c.CandidateMinCosineSimilarity)
	}
	if c.MaxCandidatePairs <= 0 {
		return fmt.Errorf("config key maxCandidatePairs must be > 0, got %d", c.MaxCandidatePairs)
	}
	if c.SampleCountPerPair <= 0 {
		return fmt.Errorf("config key sampleCountPerPair must be > 0, got %d", c.SampleCountPerPair)
	}
	if c.DominanceDelta < 0 {
		return fmt.Errorf("config key dominanceDelta must be >= 0, got %v", c.DominanceDelta)
	}
	if c.DivergenceExamplesK < 0 {
		return fmt.Errorf("config key divergenceExamplesK must be >= 0, got %d", c.DivergenceExamplesK)
	}
	if c.MinDominanceForSubsumption < 0 || c.MinDominanceForSubsumption > 1 {
		return fmt.Errorf("config key minDominanceForSubsumption must be in [0, 1], got %v", c.MinDominanceForSubsumption)
	}
	if c.AxisGapCoverageFloor < 0 || c.AxisGapCoverageFloor > 1 {
		return fmt.Errorf("config key axisGapCoverageFloor must be in [0, 1], got %v", c.AxisGapCoverageFloor)
	}
	return nil
}

// thresholds snapshots the classifier-relevant subset of the config.
func (c *Config) thresholds() domainOverlap.ClassifierThresholds {
	return domainOverlap.ClassifierThresholds{
		MergeMaxExclusiveRate:      c.MergeMaxExclusiveRate,
		MergeMinCorrelation:        c.MergeMinCorrelation,
		MergeMaxMeanAbsDiff:        c.MergeMaxMeanAbsDiff,
		MergeMaxDominance:          c.MergeMaxDominance,
		SubsumeMaxExclusiveRate:    c.SubsumeMaxExclusiveRate,
		SubsumeMinCorrelation:      c.SubsumeMinCorrelation,
		MinDominanceForSubsumption: c.MinDominanceForSubsumption,
	}
}
