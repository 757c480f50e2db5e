package intervals

import (
	"testing"
)

func TestEvaluateRelations(t *testing.T) {
	eval := NewEvaluator(nil)

	tests := []struct {
		name          string
		a, b          map[string]Interval
		wantAImpliesB bool
		wantBImpliesA bool
		wantRelation  Relation
	}{
		{
			name:          "narrower gate implies wider",
			a:             map[string]Interval{"threat": New(0.1, 0.3)},
			b:             map[string]Interval{"threat": New(0.0, 0.5)},
			wantAImpliesB: true,
			wantBImpliesA: false,
			wantRelation:  RelationNarrower,
		},
		{
			name:          "wider gate is implied by narrower",
			a:             map[string]Interval{"threat": New(0.0, 0.5)},
			b:             map[string]Interval{"threat": New(0.1, 0.3)},
			wantAImpliesB: false,
			wantBImpliesA: true,
			wantRelation:  RelationWider,
		},
		{
			name:          "equal maps",
			a:             map[string]Interval{"threat": New(0.1, 0.3)},
			b:             map[string]Interval{"threat": New(0.1, 0.3)},
			wantAImpliesB: true,
			wantBImpliesA: true,
			wantRelation:  RelationEqual,
		},
		{
			name:          "disjoint ranges",
			a:             map[string]Interval{"threat": New(0.0, 0.2)},
			b:             map[string]Interval{"threat": New(0.5, 0.9)},
			wantAImpliesB: false,
			wantBImpliesA: false,
			wantRelation:  RelationDisjoint,
		},
		{
			name:          "overlapping but neither contains the other",
			a:             map[string]Interval{"threat": New(0.0, 0.6)},
			b:             map[string]Interval{"threat": New(0.4, 0.9)},
			wantAImpliesB: false,
			wantBImpliesA: false,
			wantRelation:  RelationOverlapping,
		},
		{
			name:          "missing axis counts as unconstrained",
			a:             map[string]Interval{"threat": New(0.1, 0.3), "arousal": New(0.2, 0.8)},
			b:             map[string]Interval{"threat": New(0.0, 0.5)},
			wantAImpliesB: true,
			wantBImpliesA: false,
			wantRelation:  RelationNarrower,
		},
		{
			name:          "mixed axes in both directions overlap",
			a:             map[string]Interval{"threat": New(0.1, 0.3)},
			b:             map[string]Interval{"arousal": New(0.2, 0.8)},
			wantAImpliesB: false,
			wantBImpliesA: false,
			wantRelation:  RelationOverlapping,
		},
		{
			name:          "unsatisfiable side implies everything",
			a:             map[string]Interval{"threat": New(0.5, 0.1)},
			b:             map[string]Interval{"threat": New(0.0, 0.5)},
			wantAImpliesB: true,
			wantBImpliesA: false,
			wantRelation:  RelationNarrower,
		},
		{
			name:          "empty maps are vacuously equal",
			a:             map[string]Interval{},
			b:             map[string]Interval{},
			wantAImpliesB: true,
			wantBImpliesA: true,
			wantRelation:  RelationEqual,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eval.Evaluate(tt.a, tt.b)
			if got.AImpliesB != tt.wantAImpliesB {
				t.Errorf("AImpliesB = %v, want %v", got.AImpliesB, tt.wantAImpliesB)
			}
			if got.BImpliesA != tt.wantBImpliesA {
				t.Errorf("BImpliesA = %v, want %v", got.BImpliesA, tt.wantBImpliesA)
			}
			if got.Relation != tt.wantRelation {
				t.Errorf("Relation = %q, want %q", got.Relation, tt.wantRelation)
			}
		})
	}
}

func TestEvaluateEvidence(t *testing.T) {
	eval := NewEvaluator(nil)

	result := eval.Evaluate(
		map[string]Interval{"threat": New(0.1, 0.3), "arousal": New(0.0, 0.9)},
		map[string]Interval{"threat": New(0.0, 0.5)},
	)

	if len(result.Evidence) != 2 {
		t.Fatalf("expected 2 evidence entries, got %d", len(result.Evidence))
	}
	// Axes are sorted, so arousal comes first.
	if result.Evidence[0].Axis != "arousal" || result.Evidence[1].Axis != "threat" {
		t.Errorf("evidence axes = %q, %q, want arousal, threat",
			result.Evidence[0].Axis, result.Evidence[1].Axis)
	}
	if !result.Evidence[1].ASubsetB {
		t.Error("threat [0.1,0.3] should be a subset of [0.0,0.5]")
	}
	if len(result.CounterExampleAxes) != 2 {
		t.Errorf("counter-example axes = %v, want both axes (neither direction holds fully)", result.CounterExampleAxes)
	}
}

func TestEvaluateDecodedJSONInput(t *testing.T) {
	eval := NewEvaluator(nil)

	a := map[string]interface{}{
		"threat": map[string]interface{}{"lower": 0.1, "upper": 0.3},
	}
	b := map[string]interface{}{
		"threat": []interface{}{0.0, 0.5},
	}

	got := eval.Evaluate(a, b)
	if !got.AImpliesB || got.BImpliesA || got.Relation != RelationNarrower {
		t.Errorf("decoded JSON input: got %+v, want narrower", got)
	}
}

func TestEvaluateInvalidInput(t *testing.T) {
	eval := NewEvaluator(nil)

	got := eval.Evaluate("not an interval map", map[string]Interval{"threat": New(0.1, 0.3)})
	if !got.AImpliesB || !got.BImpliesA || got.Relation != RelationEqual {
		t.Errorf("invalid input should degrade to vacuous equal, got %+v", got)
	}
	if len(got.Evidence) != 0 {
		t.Errorf("invalid input should carry no evidence, got %d entries", len(got.Evidence))
	}
}
