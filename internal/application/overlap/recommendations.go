package overlap

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	domainOverlap "github.com/blackms/prototype-overlap-go/internal/domain/overlap"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// RecommendationBuilder turns a redundant classification and its evidence
// bundle into a ranked recommendation. Severity must be a comparable number;
// everything else about the output shape is the builder's business.
type RecommendationBuilder interface {
	Build(
		a, b *shared.Prototype,
		classification *domainOverlap.Classification,
		candidateMetrics *domainOverlap.CandidateMetrics,
		behaviorMetrics *domainOverlap.BehaviorMetrics,
		examples []domainOverlap.DivergenceExample,
		banding []domainOverlap.BandingSuggestion,
		family string,
	) (*domainOverlap.Recommendation, error)
}

// DefaultRecommendationBuilder emits structured recommendation records with
// a severity derived from classification type and behavioral evidence.
type DefaultRecommendationBuilder struct{}

// NewDefaultRecommendationBuilder creates the default builder.
func NewDefaultRecommendationBuilder() *DefaultRecommendationBuilder {
	return &DefaultRecommendationBuilder{}
}

// Build implements RecommendationBuilder.
func (rb *DefaultRecommendationBuilder) Build(
	a, b *shared.Prototype,
	classification *domainOverlap.Classification,
	candidateMetrics *domainOverlap.CandidateMetrics,
	behaviorMetrics *domainOverlap.BehaviorMetrics,
	examples []domainOverlap.DivergenceExample,
	banding []domainOverlap.BandingSuggestion,
	family string,
) (*domainOverlap.Recommendation, error) {
	if a == nil || b == nil || classification == nil {
		return nil, fmt.Errorf("recommendation builder: prototypes and classification are required")
	}

	return &domainOverlap.Recommendation{
		ID:                 uuid.New().String(),
		PrototypeA:         a.ID,
		PrototypeB:         b.ID,
		Family:             family,
		Action:             classification.Type,
		Severity:           severityFor(classification, behaviorMetrics),
		Reason:             reasonFor(a, b, classification, behaviorMetrics),
		Classification:     classification,
		CandidateMetrics:   candidateMetrics,
		BehaviorMetrics:    behaviorMetrics,
		DivergenceExamples: examples,
		BandingSuggestions: banding,
	}, nil
}

func severityFor(classification *domainOverlap.Classification, bm *domainOverlap.BehaviorMetrics) float64 {
	base := 0.5
	adjust := 0.0

	switch classification.Type {
	case domainOverlap.ClassMergeRecommended:
		base = 0.8
		if bm != nil {
			adjust = 0.2 * bm.GateOverlap.OnBothRate
		}
	case domainOverlap.ClassSubsumedRecommended:
		base = 0.6
		if bm != nil {
			adjust = 0.2 * math.Max(bm.Intensity.DominanceP, bm.Intensity.DominanceQ)
		}
	}

	severity := base + adjust
	if severity > 1 {
		severity = 1
	}
	return severity
}

func reasonFor(a, b *shared.Prototype, classification *domainOverlap.Classification, bm *domainOverlap.BehaviorMetrics) string {
	switch classification.Type {
	case domainOverlap.ClassMergeRecommended:
		if bm != nil {
			return fmt.Sprintf("%s and %s co-activate on %.0f%% of samples with near-identical intensities",
				a.ID, b.ID, bm.GateOverlap.OnBothRate*100)
		}
		return fmt.Sprintf("%s and %s behave as one prototype", a.ID, b.ID)
	case domainOverlap.ClassSubsumedRecommended:
		weaker, stronger := a.ID, b.ID
		if classification.SubsumedPrototype == "b" {
			weaker, stronger = b.ID, a.ID
		}
		return fmt.Sprintf("%s is a dominated special case of %s", weaker, stronger)
	default:
		return fmt.Sprintf("%s and %s overlap as %s", a.ID, b.ID, classification.Type)
	}
}
