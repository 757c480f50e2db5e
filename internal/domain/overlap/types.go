// Package overlap provides the domain types for prototype redundancy
// detection: candidate metrics, behavioral metrics, classifications, and
// analysis results.
package overlap

import (
	"github.com/blackms/prototype-overlap-go/internal/domain/intervals"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// ============================================================================
// Candidate Types
// ============================================================================

// Route identifies which shortlisting strategy admitted a candidate pair.
type Route string

const (
	RouteA Route = "routeA"
	RouteB Route = "routeB"
	RouteC Route = "routeC"
)

// Priority orders routes for deduplication: Route A wins over B over C.
func (r Route) Priority() int {
	switch r {
	case RouteA:
		return 3
	case RouteB:
		return 2
	case RouteC:
		return 1
	}
	return 0
}

// CandidateMetrics holds the cheap geometric similarity metrics for a pair.
// They are derived per pair and never persisted beyond one analysis run.
type CandidateMetrics struct {
	ActiveAxisOverlap      float64 `json:"activeAxisOverlap"`
	SignAgreement          float64 `json:"signAgreement"`
	WeightCosineSimilarity float64 `json:"weightCosineSimilarity"`
}

// CandidatePair is an unordered prototype pair shortlisted for behavioral
// comparison. (A, B) and (B, A) share one identity; at most one survives per
// unordered pair.
type CandidatePair struct {
	PrototypeA   *shared.Prototype  `json:"prototypeA"`
	PrototypeB   *shared.Prototype  `json:"prototypeB"`
	Metrics      CandidateMetrics   `json:"candidateMetrics"`
	SelectedBy   Route              `json:"selectedBy"`
	RouteMetrics map[string]float64 `json:"routeMetrics,omitempty"`
}

// Key returns the unordered pair identity.
func (p *CandidatePair) Key() string {
	a, b := p.PrototypeA.ID, p.PrototypeB.ID
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// ============================================================================
// Behavioral Types
// ============================================================================

// GateOverlap holds sampled gate co-activation frequencies, all in [0, 1].
type GateOverlap struct {
	OnEitherRate float64 `json:"onEitherRate"`
	OnBothRate   float64 `json:"onBothRate"`
	POnlyRate    float64 `json:"pOnlyRate"`
	QOnlyRate    float64 `json:"qOnlyRate"`
}

// IntensityMetrics holds intensity agreement statistics. Correlation and
// mean absolute difference are computed only over jointly-passing samples
// and are NaN when no such samples exist.
type IntensityMetrics struct {
	PearsonCorrelation float64 `json:"pearsonCorrelation"`
	MeanAbsDiff        float64 `json:"meanAbsDiff"`
	DominanceP         float64 `json:"dominanceP"`
	DominanceQ         float64 `json:"dominanceQ"`
}

// DivergenceExample is one worst-divergence sample: the originating context,
// both intensities, their absolute difference, and a compact summary
// restricted to axes either prototype references.
type DivergenceExample struct {
	Context    shared.EvalContext `json:"context"`
	IntensityA float64            `json:"intensityA"`
	IntensityB float64            `json:"intensityB"`
	AbsDiff    float64            `json:"absDiff"`
	Summary    string             `json:"summary"`
}

// BehaviorMetrics is the Monte Carlo comparison result for one pair.
type BehaviorMetrics struct {
	GateOverlap        GateOverlap         `json:"gateOverlap"`
	Intensity          IntensityMetrics    `json:"intensity"`
	DivergenceExamples []DivergenceExample `json:"divergenceExamples"`
	SampleCount        int                 `json:"sampleCount"`
	ImplicationResult  *intervals.Result   `json:"implicationResult,omitempty"`
}

// ============================================================================
// Classification Types
// ============================================================================

// ClassificationType is one of the fixed six overlap classifications.
type ClassificationType string

const (
	ClassMergeRecommended    ClassificationType = "merge_recommended"
	ClassSubsumedRecommended ClassificationType = "subsumed_recommended"
	ClassConvertToExpression ClassificationType = "convert_to_expression"
	ClassNestedSiblings      ClassificationType = "nested_siblings"
	ClassNeedsSeparation     ClassificationType = "needs_separation"
	ClassKeepDistinct        ClassificationType = "keep_distinct"
)

// AllClassificationTypes lists the fixed priority order of the classifier
// rule slots. First match wins; keep_distinct is the unconditional fallback.
func AllClassificationTypes() []ClassificationType {
	return []ClassificationType{
		ClassMergeRecommended,
		ClassSubsumedRecommended,
		ClassConvertToExpression,
		ClassNestedSiblings,
		ClassNeedsSeparation,
		ClassKeepDistinct,
	}
}

// IsRedundant reports whether the classification indicates a redundancy that
// warrants a recommendation.
func (t ClassificationType) IsRedundant() bool {
	return t != ClassKeepDistinct && t != ""
}

// ClassifierThresholds is the threshold snapshot a classification was made
// against.
type ClassifierThresholds struct {
	MergeMaxExclusiveRate      float64 `json:"mergeMaxExclusiveRate"`
	MergeMinCorrelation        float64 `json:"mergeMinCorrelation"`
	MergeMaxMeanAbsDiff        float64 `json:"mergeMaxMeanAbsDiff"`
	MergeMaxDominance          float64 `json:"mergeMaxDominance"`
	SubsumeMaxExclusiveRate    float64 `json:"subsumeMaxExclusiveRate"`
	SubsumeMinCorrelation      float64 `json:"subsumeMinCorrelation"`
	MinDominanceForSubsumption float64 `json:"minDominanceForSubsumption"`
}

// Classification is the total, deterministic verdict for one pair.
type Classification struct {
	Type                       ClassificationType   `json:"type"`
	Thresholds                 ClassifierThresholds `json:"thresholds"`
	CandidateMetrics           *CandidateMetrics    `json:"candidateMetrics,omitempty"`
	BehaviorMetrics            *BehaviorMetrics     `json:"behaviorMetrics,omitempty"`
	SubsumedPrototype          string               `json:"subsumedPrototype,omitempty"`
	AllMatchingClassifications []ClassificationType `json:"allMatchingClassifications"`
}

// ============================================================================
// Recommendation and Result Types
// ============================================================================

// BandingSuggestion proposes a tightened gate band for one axis of a
// redundant pair.
type BandingSuggestion struct {
	Axis          string             `json:"axis"`
	SuggestedBand intervals.Interval `json:"suggestedBand"`
	Reason        string             `json:"reason"`
}

// Recommendation is one ranked redundancy finding.
type Recommendation struct {
	ID                 string              `json:"id"`
	PrototypeA         string              `json:"prototypeA"`
	PrototypeB         string              `json:"prototypeB"`
	Family             string              `json:"family"`
	Action             ClassificationType  `json:"action"`
	Severity           float64             `json:"severity"`
	Reason             string              `json:"reason"`
	Classification     *Classification     `json:"classification"`
	CandidateMetrics   *CandidateMetrics   `json:"candidateMetrics,omitempty"`
	BehaviorMetrics    *BehaviorMetrics    `json:"behaviorMetrics,omitempty"`
	DivergenceExamples []DivergenceExample `json:"divergenceExamples,omitempty"`
	BandingSuggestions []BandingSuggestion `json:"bandingSuggestions,omitempty"`
}

// AxisGap flags one axis with systematically low coverage across a family.
type AxisGap struct {
	Axis         string  `json:"axis"`
	CoverageRate float64 `json:"coverageRate"`
	Prototypes   int     `json:"prototypes"`
}

// AxisGapReport is the optional family-wide coverage post-pass result.
type AxisGapReport struct {
	Gaps          []AxisGap `json:"gaps"`
	AxesExamined  int       `json:"axesExamined"`
	CoverageFloor float64   `json:"coverageFloor"`
}

// AnalysisMetadata describes one analysis run.
type AnalysisMetadata struct {
	RunID                   string `json:"runId"`
	PrototypeFamily         string `json:"prototypeFamily"`
	TotalPrototypes         int    `json:"totalPrototypes"`
	CandidatePairsFound     int    `json:"candidatePairsFound"`
	CandidatePairsEvaluated int    `json:"candidatePairsEvaluated"`
	RedundantPairsFound     int    `json:"redundantPairsFound"`
	SampleCountPerPair      int    `json:"sampleCountPerPair"`
	AnalysisMode            string `json:"analysisMode"`
}

// AnalysisResult is the complete output of one analyze call, created fresh
// per run.
type AnalysisResult struct {
	Recommendations []*Recommendation `json:"recommendations"`
	Metadata        AnalysisMetadata  `json:"metadata"`
	AxisGapAnalysis *AxisGapReport    `json:"axisGapAnalysis,omitempty"`
}
