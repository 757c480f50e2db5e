package overlap

import (
	"math"

	domainOverlap "github.com/blackms/prototype-overlap-go/internal/domain/overlap"
)

// classifierRule is one slot in the fixed priority list. The verdict string
// is empty except for rules that name a subsumed side.
type classifierRule struct {
	classType domainOverlap.ClassificationType
	matches   func(c *Config, cm *domainOverlap.CandidateMetrics, bm *domainOverlap.BehaviorMetrics) (bool, string)
}

// OverlapClassifier runs Stage C: a fixed six-slot priority rule list maps
// geometric and behavioral metrics to exactly one classification. It is
// total, pure, and deterministic; garbage input resolves to keep_distinct.
type OverlapClassifier struct {
	config Config
	rules  []classifierRule
}

// NewOverlapClassifier creates a Stage C classifier.
func NewOverlapClassifier(config Config) *OverlapClassifier {
	return &OverlapClassifier{
		config: config,
		rules: []classifierRule{
			{domainOverlap.ClassMergeRecommended, mergeRecommendedRule},
			{domainOverlap.ClassSubsumedRecommended, subsumedRecommendedRule},
			// The three middle slots are reserved extension points. They stay
			// in the list so adding a real rule later does not reorder or
			// renumber the existing ones.
			{domainOverlap.ClassConvertToExpression, neverMatchesRule},
			{domainOverlap.ClassNestedSiblings, neverMatchesRule},
			{domainOverlap.ClassNeedsSeparation, neverMatchesRule},
			{domainOverlap.ClassKeepDistinct, alwaysMatchesRule},
		},
	}
}

// Classify evaluates the rule list in priority order; the first match wins
// and every matching type is recorded in AllMatchingClassifications.
func (c *OverlapClassifier) Classify(
	candidateMetrics *domainOverlap.CandidateMetrics,
	behaviorMetrics *domainOverlap.BehaviorMetrics,
) *domainOverlap.Classification {
	result := &domainOverlap.Classification{
		Thresholds:                 c.config.thresholds(),
		CandidateMetrics:           candidateMetrics,
		BehaviorMetrics:            behaviorMetrics,
		AllMatchingClassifications: make([]domainOverlap.ClassificationType, 0, len(c.rules)),
	}

	for _, rule := range c.rules {
		matched, subsumed := rule.matches(&c.config, candidateMetrics, behaviorMetrics)
		if !matched {
			continue
		}
		result.AllMatchingClassifications = append(result.AllMatchingClassifications, rule.classType)
		if result.Type == "" {
			result.Type = rule.classType
			result.SubsumedPrototype = subsumed
		}
	}
	return result
}

// mergeRecommendedRule fires when the gates materially co-occur, intensities
// track each other closely, and neither side strongly dominates.
func mergeRecommendedRule(c *Config, _ *domainOverlap.CandidateMetrics, bm *domainOverlap.BehaviorMetrics) (bool, string) {
	if bm == nil {
		return false, ""
	}
	gate := bm.GateOverlap
	if gate.OnEitherRate <= 0 {
		return false, ""
	}
	if gate.POnlyRate > c.MergeMaxExclusiveRate || gate.QOnlyRate > c.MergeMaxExclusiveRate {
		return false, ""
	}

	in := bm.Intensity
	if math.IsNaN(in.MeanAbsDiff) || in.MeanAbsDiff > c.MergeMaxMeanAbsDiff {
		return false, ""
	}
	if !correlationMeets(in.PearsonCorrelation, in.MeanAbsDiff, c.MergeMinCorrelation) {
		return false, ""
	}
	if in.DominanceP >= c.MergeMaxDominance || in.DominanceQ >= c.MergeMaxDominance {
		return false, ""
	}
	return true, ""
}

// subsumedRecommendedRule fires when at least one side is almost never
// active alone, the intensities correlate, and one side's intensity strongly
// dominates; the verdict names the dominated side.
func subsumedRecommendedRule(c *Config, _ *domainOverlap.CandidateMetrics, bm *domainOverlap.BehaviorMetrics) (bool, string) {
	if bm == nil {
		return false, ""
	}
	gate := bm.GateOverlap
	if gate.OnEitherRate <= 0 {
		return false, ""
	}
	if math.Min(gate.POnlyRate, gate.QOnlyRate) > c.SubsumeMaxExclusiveRate {
		return false, ""
	}

	in := bm.Intensity
	if !correlationMeets(in.PearsonCorrelation, in.MeanAbsDiff, c.SubsumeMinCorrelation) {
		return false, ""
	}
	if in.DominanceP < c.MinDominanceForSubsumption && in.DominanceQ < c.MinDominanceForSubsumption {
		return false, ""
	}
	if in.DominanceP >= in.DominanceQ {
		return true, "b"
	}
	return true, "a"
}

// correlationMeets applies a correlation bar. A NaN correlation with a near
// zero mean difference means the intensities were constant and identical on
// joint samples, which passes any bar; NaN otherwise fails.
func correlationMeets(correlation, meanAbsDiff, minimum float64) bool {
	if math.IsNaN(correlation) {
		return !math.IsNaN(meanAbsDiff) && meanAbsDiff <= 1e-9
	}
	return correlation >= minimum
}

func neverMatchesRule(*Config, *domainOverlap.CandidateMetrics, *domainOverlap.BehaviorMetrics) (bool, string) {
	return false, ""
}

func alwaysMatchesRule(*Config, *domainOverlap.CandidateMetrics, *domainOverlap.BehaviorMetrics) (bool, string) {
	return true, ""
}
