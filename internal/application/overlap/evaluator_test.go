package overlap

import (
	"math"
	"testing"

	"github.com/blackms/prototype-overlap-go/internal/shared"
)

func newTestEvaluator(t *testing.T, config Config, contexts []shared.Context) *BehavioralOverlapEvaluator {
	t.Helper()
	evaluator, err := NewBehavioralOverlapEvaluator(
		config, &scriptedGenerator{contexts: contexts}, passthroughBuilder{}, astChecker{}, weightedIntensity{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return evaluator
}

func TestEvaluateIdenticalBehavior(t *testing.T) {
	weights := map[string]float64{"threat": 1.0}
	a := testPrototype("fear", weights, nil)
	b := testPrototype("anxiety", weights, nil)

	evaluator := newTestEvaluator(t, testConfig(), []shared.Context{{"threat": 0.6}})
	metrics, err := evaluator.Evaluate(a, b, 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if metrics.SampleCount != 100 {
		t.Errorf("SampleCount = %d, want 100", metrics.SampleCount)
	}
	gate := metrics.GateOverlap
	if gate.OnBothRate != 1.0 || gate.OnEitherRate != 1.0 {
		t.Errorf("gate overlap = %+v, want full co-activation", gate)
	}
	if gate.POnlyRate != 0 || gate.QOnlyRate != 0 {
		t.Errorf("exclusive rates = %v/%v, want 0/0", gate.POnlyRate, gate.QOnlyRate)
	}
	if metrics.Intensity.MeanAbsDiff > 1e-12 {
		t.Errorf("MeanAbsDiff = %v, want ~0", metrics.Intensity.MeanAbsDiff)
	}
	// Constant intensities leave Pearson undefined.
	if !math.IsNaN(metrics.Intensity.PearsonCorrelation) {
		t.Errorf("PearsonCorrelation = %v, want NaN for constant intensities", metrics.Intensity.PearsonCorrelation)
	}
	if metrics.Intensity.DominanceP != 0 || metrics.Intensity.DominanceQ != 0 {
		t.Errorf("dominance = %v/%v, want 0/0", metrics.Intensity.DominanceP, metrics.Intensity.DominanceQ)
	}
}

func TestEvaluateNoJointSamples(t *testing.T) {
	a := testPrototype("fear", map[string]float64{"threat": 1.0}, "threat >= 0.9")
	b := testPrototype("calm", map[string]float64{"threat": -1.0}, "threat <= 0.1")

	evaluator := newTestEvaluator(t, testConfig(), []shared.Context{{"threat": 0.5}})
	metrics, err := evaluator.Evaluate(a, b, 40, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if metrics.GateOverlap.OnEitherRate != 0 {
		t.Errorf("OnEitherRate = %v, want 0", metrics.GateOverlap.OnEitherRate)
	}
	if !math.IsNaN(metrics.Intensity.PearsonCorrelation) {
		t.Errorf("PearsonCorrelation = %v, want NaN with no joint samples", metrics.Intensity.PearsonCorrelation)
	}
	if !math.IsNaN(metrics.Intensity.MeanAbsDiff) {
		t.Errorf("MeanAbsDiff = %v, want NaN with no joint samples", metrics.Intensity.MeanAbsDiff)
	}
}

func TestEvaluateDominance(t *testing.T) {
	a := testPrototype("strong", map[string]float64{"threat": 1.0}, nil)
	b := testPrototype("weak", map[string]float64{"threat": 0.5}, nil)

	evaluator := newTestEvaluator(t, testConfig(), []shared.Context{{"threat": 0.6}})
	metrics, err := evaluator.Evaluate(a, b, 20, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if metrics.Intensity.DominanceP != 1.0 {
		t.Errorf("DominanceP = %v, want 1.0", metrics.Intensity.DominanceP)
	}
	if metrics.Intensity.DominanceQ != 0 {
		t.Errorf("DominanceQ = %v, want 0", metrics.Intensity.DominanceQ)
	}
}

func TestEvaluateDivergenceExamples(t *testing.T) {
	config := testConfig()
	config.DivergenceExamplesK = 2

	a := testPrototype("wide", map[string]float64{"threat": 1.0}, nil)
	b := testPrototype("flat", map[string]float64{}, nil)

	// Intensity diffs cycle 0.1, 0.5, 0.3.
	contexts := []shared.Context{{"threat": 0.1}, {"threat": 0.5}, {"threat": 0.3}}
	evaluator := newTestEvaluator(t, config, contexts)
	metrics, err := evaluator.Evaluate(a, b, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(metrics.DivergenceExamples) != 2 {
		t.Fatalf("expected 2 divergence examples, got %d", len(metrics.DivergenceExamples))
	}
	first, second := metrics.DivergenceExamples[0], metrics.DivergenceExamples[1]
	if math.Abs(first.AbsDiff-0.5) > 1e-12 || math.Abs(second.AbsDiff-0.3) > 1e-12 {
		t.Errorf("diffs = %v, %v, want 0.5, 0.3 in descending order", first.AbsDiff, second.AbsDiff)
	}
	if first.Summary != "threat=0.500" {
		t.Errorf("Summary = %q, want %q", first.Summary, "threat=0.500")
	}
}

func TestEvaluateSampleCountFallback(t *testing.T) {
	config := testConfig()
	config.SampleCountPerPair = 7

	a := testPrototype("a", map[string]float64{"threat": 1.0}, nil)
	b := testPrototype("b", map[string]float64{"threat": 1.0}, nil)

	evaluator := newTestEvaluator(t, config, []shared.Context{{"threat": 0.6}})
	metrics, err := evaluator.Evaluate(a, b, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.SampleCount != 7 {
		t.Errorf("SampleCount = %d, want configured fallback 7", metrics.SampleCount)
	}
}

func TestEvaluateProgressChunks(t *testing.T) {
	a := testPrototype("a", map[string]float64{"threat": 1.0}, nil)
	b := testPrototype("b", map[string]float64{"threat": 1.0}, nil)
	contexts := []shared.Context{{"threat": 0.6}}

	t.Run("small total gets exactly one call", func(t *testing.T) {
		evaluator := newTestEvaluator(t, testConfig(), contexts)
		var calls [][2]int
		if _, err := evaluator.Evaluate(a, b, 100, func(completed, total int) {
			calls = append(calls, [2]int{completed, total})
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(calls) != 1 || calls[0] != [2]int{100, 100} {
			t.Errorf("progress calls = %v, want [[100 100]]", calls)
		}
	})

	t.Run("large total gets chunk boundaries plus completion", func(t *testing.T) {
		evaluator := newTestEvaluator(t, testConfig(), contexts)
		var calls [][2]int
		if _, err := evaluator.Evaluate(a, b, 1200, func(completed, total int) {
			calls = append(calls, [2]int{completed, total})
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := [][2]int{{500, 1200}, {1000, 1200}, {1200, 1200}}
		if len(calls) != len(want) {
			t.Fatalf("progress calls = %v, want %v", calls, want)
		}
		for i := range want {
			if calls[i] != want[i] {
				t.Errorf("call %d = %v, want %v", i, calls[i], want[i])
			}
		}
	})
}

func TestEvaluatePrecomputed(t *testing.T) {
	a := testPrototype("a", map[string]float64{"threat": 1.0}, nil)
	b := testPrototype("b", map[string]float64{"threat": 1.0}, nil)

	evaluator := newTestEvaluator(t, testConfig(), []shared.Context{{"threat": 0.6}})
	vectors := &PrecomputedVectors{
		VectorA: []SampleVector{{true, 0.6}, {true, 0.8}, {false, 0.2}},
		VectorB: []SampleVector{{true, 0.6}, {false, 0.1}, {false, 0.2}},
	}

	metrics, err := evaluator.EvaluatePrecomputed(a, b, vectors, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", metrics.SampleCount)
	}
	gate := metrics.GateOverlap
	if math.Abs(gate.OnBothRate-1.0/3.0) > 1e-12 {
		t.Errorf("OnBothRate = %v, want 1/3", gate.OnBothRate)
	}
	if math.Abs(gate.POnlyRate-1.0/3.0) > 1e-12 {
		t.Errorf("POnlyRate = %v, want 1/3", gate.POnlyRate)
	}
	if gate.QOnlyRate != 0 {
		t.Errorf("QOnlyRate = %v, want 0", gate.QOnlyRate)
	}
	// One joint sample with equal intensities.
	if metrics.Intensity.MeanAbsDiff > 1e-12 {
		t.Errorf("MeanAbsDiff = %v, want 0", metrics.Intensity.MeanAbsDiff)
	}
}

func TestEvaluateRequiresPrototypes(t *testing.T) {
	evaluator := newTestEvaluator(t, testConfig(), []shared.Context{{"threat": 0.6}})
	if _, err := evaluator.Evaluate(nil, testPrototype("b", map[string]float64{"threat": 1}, nil), 10, nil); err == nil {
		t.Error("expected error for nil prototype")
	}
	if _, err := evaluator.EvaluatePrecomputed(testPrototype("a", map[string]float64{"threat": 1}, nil), nil, nil, nil); err == nil {
		t.Error("expected error for nil prototype")
	}
}
