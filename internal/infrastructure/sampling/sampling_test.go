package sampling

import (
	"testing"

	"github.com/blackms/prototype-overlap-go/internal/shared"
)

func TestGeneratorStaysWithinAxisBounds(t *testing.T) {
	axes := []AxisSpec{
		{Name: "valence", Min: -1, Max: 1},
		{Name: "threat", Min: 0, Max: 1},
	}
	generator := NewDefaultRandomStateGenerator(axes, 42)

	for i := 0; i < 200; i++ {
		ctx := generator.Generate()
		if len(ctx) != 2 {
			t.Fatalf("expected 2 axes, got %d", len(ctx))
		}
		for _, axis := range axes {
			value, ok := ctx[axis.Name]
			if !ok {
				t.Fatalf("missing axis %q", axis.Name)
			}
			if value < axis.Min || value > axis.Max {
				t.Errorf("axis %q = %v outside [%v, %v]", axis.Name, value, axis.Min, axis.Max)
			}
		}
	}
}

func TestGeneratorIsSeedDeterministic(t *testing.T) {
	first := NewDefaultRandomStateGenerator(nil, 7)
	second := NewDefaultRandomStateGenerator(nil, 7)

	for i := 0; i < 20; i++ {
		a, b := first.Generate(), second.Generate()
		for axis, value := range a {
			if b[axis] != value {
				t.Fatalf("sample %d diverged on axis %q: %v vs %v", i, axis, value, b[axis])
			}
		}
	}
}

func TestGeneratorDefaultsAxisSchema(t *testing.T) {
	generator := NewDefaultRandomStateGenerator(nil, 1)
	ctx := generator.Generate()
	if len(ctx) != len(DefaultAxes()) {
		t.Errorf("expected %d default axes, got %d", len(DefaultAxes()), len(ctx))
	}
}

func TestContextBuilder(t *testing.T) {
	builder := NewDefaultContextBuilder()

	ctx := builder.BuildContext(
		shared.Context{"threat": 0.6, "arousal": 0.4},
		shared.Context{"threat": 0.2},
		shared.Context{"arousal": 0.9, "patience": 0.7},
	)

	if ctx["threat"] != 0.6 {
		t.Errorf("threat = %v, want current value 0.6", ctx["threat"])
	}
	if ctx["prev_threat"] != 0.2 {
		t.Errorf("prev_threat = %v, want 0.2", ctx["prev_threat"])
	}
	// Current state overrides a trait on collision.
	if ctx["arousal"] != 0.4 {
		t.Errorf("arousal = %v, want current value 0.4", ctx["arousal"])
	}
	if ctx["patience"] != 0.7 {
		t.Errorf("patience = %v, want trait value 0.7", ctx["patience"])
	}
}

func TestGateChecker(t *testing.T) {
	checker, err := NewDefaultGateChecker(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := shared.EvalContext{"threat": 0.6}
	tests := []struct {
		name string
		spec shared.GateSpec
		want bool
	}{
		{"nil gates pass", nil, true},
		{"satisfied gate", "threat >= 0.5", true},
		{"failed gate", "threat >= 0.7", false},
		{"array of gates", []string{"threat >= 0.5", "threat <= 0.9"}, true},
		{"unparseable portion is tolerated", []interface{}{"threat >= 0.5", "???"}, true},
		{"missing axis is vacuously satisfied", "novelty >= 0.9", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.CheckAllGatesPass(tt.spec, ctx); got != tt.want {
				t.Errorf("CheckAllGatesPass() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGateCheckerCacheReuse(t *testing.T) {
	checker, err := NewDefaultGateChecker(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spec := "threat >= 0.5"
	// First call parses, second must hit the cache with the same outcome.
	first := checker.CheckAllGatesPass(spec, shared.EvalContext{"threat": 0.6})
	second := checker.CheckAllGatesPass(spec, shared.EvalContext{"threat": 0.6})
	if !first || !second {
		t.Errorf("cached evaluation diverged: %v then %v", first, second)
	}
	if checker.CheckAllGatesPass(spec, shared.EvalContext{"threat": 0.1}) {
		t.Error("cached AST must still evaluate against the new context")
	}
}

func TestIntensityCalculator(t *testing.T) {
	calc := NewDefaultIntensityCalculator()

	got := calc.ComputeIntensity(
		map[string]float64{"threat": 0.5, "arousal": -0.2, "novelty": 1.0},
		shared.EvalContext{"threat": 0.8, "arousal": 0.5},
	)
	// novelty is missing from the context and contributes nothing.
	want := 0.5*0.8 + (-0.2)*0.5
	if diff := got - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("ComputeIntensity() = %v, want %v", got, want)
	}

	if calc.ComputeIntensity(nil, shared.EvalContext{"threat": 0.8}) != 0 {
		t.Error("empty weights should yield zero intensity")
	}
}
