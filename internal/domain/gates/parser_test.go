package gates

import (
	"testing"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		want         string
		wantComplete bool
	}{
		{
			name:         "single comparison",
			input:        "threat >= 0.5",
			want:         "threat >= 0.5",
			wantComplete: true,
		},
		{
			name:         "conjunction",
			input:        "threat >= 0.5 AND arousal > 0.3",
			want:         "threat >= 0.5 AND arousal > 0.3",
			wantComplete: true,
		},
		{
			name:         "or binds looser than and",
			input:        "threat >= 0.5 AND arousal > 0.3 OR novelty < 0.2",
			want:         "threat >= 0.5 AND arousal > 0.3 OR novelty < 0.2",
			wantComplete: true,
		},
		{
			name:         "lowercase connectives",
			input:        "threat >= 0.5 and arousal > 0.3",
			want:         "threat >= 0.5 AND arousal > 0.3",
			wantComplete: true,
		},
		{
			name:         "negative threshold",
			input:        "valence <= -0.5",
			want:         "valence <= -0.5",
			wantComplete: true,
		},
		{
			name:         "blank gate means no constraint",
			input:        "   ",
			want:         "true",
			wantComplete: true,
		},
		{
			name:         "garbage falls back to sentinel",
			input:        "threat >=",
			want:         "true",
			wantComplete: false,
		},
		{
			name:         "trailing junk is rejected",
			input:        "threat >= 0.5 arousal",
			want:         "true",
			wantComplete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.input)
			if got := result.AST.String(); got != tt.want {
				t.Errorf("Parse(%q).AST = %q, want %q", tt.input, got, tt.want)
			}
			if result.ParseComplete != tt.wantComplete {
				t.Errorf("ParseComplete = %v, want %v", result.ParseComplete, tt.wantComplete)
			}
			if !tt.wantComplete && len(result.Errors) == 0 {
				t.Error("expected parse errors to be recorded")
			}
		})
	}
}

func TestParseSlice(t *testing.T) {
	t.Run("string elements are AND-ed", func(t *testing.T) {
		result := Parse([]string{"threat >= 0.5", "arousal > 0.3"})
		if !result.ParseComplete {
			t.Fatalf("unexpected parse errors: %v", result.Errors)
		}
		want := "threat >= 0.5 AND arousal > 0.3"
		if got := result.AST.String(); got != want {
			t.Errorf("AST = %q, want %q", got, want)
		}
	})

	t.Run("bad element is skipped and reported", func(t *testing.T) {
		result := Parse([]interface{}{"threat >= 0.5", "???", "arousal > 0.3"})
		if result.ParseComplete {
			t.Error("expected ParseComplete to be false")
		}
		if len(result.Errors) != 1 {
			t.Fatalf("expected 1 error, got %d: %v", len(result.Errors), result.Errors)
		}
		want := "threat >= 0.5 AND arousal > 0.3"
		if got := result.AST.String(); got != want {
			t.Errorf("surviving AST = %q, want %q", got, want)
		}
	})

	t.Run("all elements bad yields sentinel", func(t *testing.T) {
		result := Parse([]interface{}{"???", 42})
		if result.ParseComplete {
			t.Error("expected ParseComplete to be false")
		}
		if !result.AST.IsTrue() {
			t.Errorf("AST = %q, want sentinel", result.AST.String())
		}
	})

	t.Run("empty slice yields sentinel", func(t *testing.T) {
		result := Parse([]interface{}{})
		if !result.ParseComplete {
			t.Errorf("unexpected parse errors: %v", result.Errors)
		}
		if !result.AST.IsTrue() {
			t.Errorf("AST = %q, want sentinel", result.AST.String())
		}
	})
}

func TestParseLogicObject(t *testing.T) {
	tests := []struct {
		name         string
		input        map[string]interface{}
		want         string
		wantComplete bool
	}{
		{
			name: "simple comparison",
			input: map[string]interface{}{
				">=": []interface{}{map[string]interface{}{"var": "threat"}, 0.5},
			},
			want:         "threat >= 0.5",
			wantComplete: true,
		},
		{
			name: "mirrored comparison when var is second",
			input: map[string]interface{}{
				">=": []interface{}{0.5, map[string]interface{}{"var": "threat"}},
			},
			want:         "threat <= 0.5",
			wantComplete: true,
		},
		{
			name: "and of comparisons",
			input: map[string]interface{}{
				"and": []interface{}{
					map[string]interface{}{">=": []interface{}{map[string]interface{}{"var": "threat"}, 0.5}},
					map[string]interface{}{"<": []interface{}{map[string]interface{}{"var": "arousal"}, 0.3}},
				},
			},
			want:         "threat >= 0.5 AND arousal < 0.3",
			wantComplete: true,
		},
		{
			name: "negation",
			input: map[string]interface{}{
				"!": map[string]interface{}{
					">": []interface{}{map[string]interface{}{"var": "control"}, 0.4},
				},
			},
			want:         "NOT (control > 0.4)",
			wantComplete: true,
		},
		{
			name: "unknown operator fails",
			input: map[string]interface{}{
				"~=": []interface{}{map[string]interface{}{"var": "threat"}, 0.5},
			},
			want:         "true",
			wantComplete: false,
		},
		{
			name: "no variable operand fails",
			input: map[string]interface{}{
				">=": []interface{}{0.5, 0.3},
			},
			want:         "true",
			wantComplete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.input)
			if got := result.AST.String(); got != tt.want {
				t.Errorf("AST = %q, want %q", got, tt.want)
			}
			if result.ParseComplete != tt.wantComplete {
				t.Errorf("ParseComplete = %v, want %v", result.ParseComplete, tt.wantComplete)
			}
		})
	}
}

func TestParseNilAndNode(t *testing.T) {
	if result := Parse(nil); !result.AST.IsTrue() || !result.ParseComplete {
		t.Errorf("Parse(nil) = (%q, %v), want sentinel and complete", result.AST.String(), result.ParseComplete)
	}

	node := Comparison("threat", OpGTE, 0.5)
	if result := Parse(node); result.AST != node {
		t.Error("Parse(*Node) should pass the node through")
	}
}
