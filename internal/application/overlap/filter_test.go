package overlap

import (
	"testing"

	domainOverlap "github.com/blackms/prototype-overlap-go/internal/domain/overlap"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

func TestFilterCandidatesAdmitsIdenticalPrototypes(t *testing.T) {
	filter, err := NewCandidatePairFilter(testConfig(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	weights := map[string]float64{"threat": 0.8, "arousal": 0.5}
	prototypes := []*shared.Prototype{
		testPrototype("fear", weights, nil),
		testPrototype("anxiety", weights, nil),
	}

	result, err := filter.FilterCandidates(prototypes, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(result.Candidates))
	}

	pair := result.Candidates[0]
	if pair.SelectedBy != domainOverlap.RouteA {
		t.Errorf("SelectedBy = %q, want routeA", pair.SelectedBy)
	}
	if pair.Metrics.ActiveAxisOverlap != 1.0 {
		t.Errorf("ActiveAxisOverlap = %v, want 1.0", pair.Metrics.ActiveAxisOverlap)
	}
	if pair.Metrics.WeightCosineSimilarity < 0.999 {
		t.Errorf("WeightCosineSimilarity = %v, want ~1.0", pair.Metrics.WeightCosineSimilarity)
	}
	if result.Stats.PairsEvaluated != 1 {
		t.Errorf("PairsEvaluated = %d, want 1", result.Stats.PairsEvaluated)
	}
}

func TestFilterCandidatesRejectsDissimilarPrototypes(t *testing.T) {
	filter, err := NewCandidatePairFilter(testConfig(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prototypes := []*shared.Prototype{
		testPrototype("fear", map[string]float64{"threat": 0.9}, nil),
		testPrototype("joy", map[string]float64{"valence": 0.9}, nil),
	}

	result, err := filter.FilterCandidates(prototypes, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(result.Candidates))
	}
}

func TestFilterCandidatesDiscardsUnusablePrototypes(t *testing.T) {
	filter, err := NewCandidatePairFilter(testConfig(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prototypes := []*shared.Prototype{
		testPrototype("fear", map[string]float64{"threat": 0.8}, nil),
		testPrototype("empty", nil, nil),
	}

	result, err := filter.FilterCandidates(prototypes, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stats.PrototypesConsidered != 2 {
		t.Errorf("PrototypesConsidered = %d, want 2", result.Stats.PrototypesConsidered)
	}
	if result.Stats.PrototypesUsable != 1 {
		t.Errorf("PrototypesUsable = %d, want 1", result.Stats.PrototypesUsable)
	}
	if result.Stats.PairsEvaluated != 0 {
		t.Errorf("PairsEvaluated = %d, want 0 (fewer than two usable)", result.Stats.PairsEvaluated)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(result.Candidates))
	}
}

func TestFilterCandidatesProgress(t *testing.T) {
	filter, err := NewCandidatePairFilter(testConfig(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	weights := map[string]float64{"threat": 0.8}
	prototypes := []*shared.Prototype{
		testPrototype("a", weights, nil),
		testPrototype("b", weights, nil),
		testPrototype("c", weights, nil),
	}

	var calls []int
	_, err = filter.FilterCandidates(prototypes, func(current, total int) {
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
		calls = append(calls, current)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 3 || calls[0] != 1 || calls[2] != 3 {
		t.Errorf("progress calls = %v, want [1 2 3]", calls)
	}
}

func TestFilterCandidatesMultiRoutePriority(t *testing.T) {
	config := testConfig()
	config.EnableMultiRoute = true
	// Thresholds nothing satisfies, so Route A rejects every pair.
	config.CandidateMinCosineSimilarity = 1.1

	routeB := &admitAllFilter{}
	routeC := &admitAllFilter{}
	filter, err := NewCandidatePairFilter(config, routeB, routeC, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	weights := map[string]float64{"threat": 0.8}
	prototypes := []*shared.Prototype{
		testPrototype("a", weights, nil),
		testPrototype("b", weights, nil),
	}

	result, err := filter.FilterCandidates(prototypes, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if routeB.calls != 1 || routeC.calls != 1 {
		t.Errorf("route filter calls = B:%d C:%d, want 1 each", routeB.calls, routeC.calls)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("expected 1 merged candidate, got %d", len(result.Candidates))
	}
	// Route B has higher priority than Route C, so the B admission wins.
	if got := result.Candidates[0].SelectedBy; got != domainOverlap.RouteB {
		t.Errorf("SelectedBy = %q, want routeB", got)
	}
	if stats := result.Stats.RouteStats[domainOverlap.RouteB]; stats.Admitted != 1 {
		t.Errorf("routeB admitted = %d, want 1", stats.Admitted)
	}
}
