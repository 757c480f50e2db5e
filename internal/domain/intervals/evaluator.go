package intervals

import (
	"log/slog"
	"sort"
)

// Relation classifies how two interval maps relate to each other.
type Relation string

const (
	RelationEqual       Relation = "equal"
	RelationNarrower    Relation = "narrower"
	RelationWider       Relation = "wider"
	RelationDisjoint    Relation = "disjoint"
	RelationOverlapping Relation = "overlapping"
)

// AxisEvidence records the per-axis subset decisions behind a verdict.
type AxisEvidence struct {
	Axis      string   `json:"axis"`
	IntervalA Interval `json:"intervalA"`
	IntervalB Interval `json:"intervalB"`
	ASubsetB  bool     `json:"aSubsetB"`
	BSubsetA  bool     `json:"bSubsetA"`
}

// Result is the aggregate implication verdict for two interval maps.
type Result struct {
	AImpliesB          bool           `json:"aImpliesB"`
	BImpliesA          bool           `json:"bImpliesA"`
	Relation           Relation       `json:"relation"`
	CounterExampleAxes []string       `json:"counterExampleAxes"`
	Evidence           []AxisEvidence `json:"evidence"`
}

// Evaluator decides subset/superset/disjoint/overlap relationships between
// two axis-to-interval maps. It is a pure function of its inputs.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates an interval implication evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// Evaluate compares two interval maps over the union of their axes. A
// missing axis counts as the unconstrained interval. Invalid input (anything
// that cannot be normalized to an interval map) is treated as "no
// constraints on either side": it logs a warning and returns the vacuous
// equal result with empty evidence.
func (e *Evaluator) Evaluate(rawA, rawB interface{}) *Result {
	mapA, okA := NormalizeIntervalMap(rawA)
	mapB, okB := NormalizeIntervalMap(rawB)
	if !okA || !okB {
		e.logger.Warn("invalid interval map input, treating as unconstrained",
			"aValid", okA, "bValid", okB)
		return &Result{AImpliesB: true, BImpliesA: true, Relation: RelationEqual,
			CounterExampleAxes: []string{}, Evidence: []AxisEvidence{}}
	}

	axes := unionAxes(mapA, mapB)
	result := &Result{
		AImpliesB:          true,
		BImpliesA:          true,
		CounterExampleAxes: []string{},
		Evidence:           make([]AxisEvidence, 0, len(axes)),
	}

	anyDisjoint := false
	anyUnsatisfiable := false
	for _, axis := range axes {
		ivA := intervalOrUnbounded(mapA, axis)
		ivB := intervalOrUnbounded(mapB, axis)
		if ivA.Unsatisfiable || ivB.Unsatisfiable {
			anyUnsatisfiable = true
		}

		aSubsetB := ivA.SubsetOf(ivB)
		bSubsetA := ivB.SubsetOf(ivA)
		result.AImpliesB = result.AImpliesB && aSubsetB
		result.BImpliesA = result.BImpliesA && bSubsetA
		if ivA.DisjointFrom(ivB) {
			anyDisjoint = true
		}
		if !aSubsetB || !bSubsetA {
			result.CounterExampleAxes = append(result.CounterExampleAxes, axis)
		}

		result.Evidence = append(result.Evidence, AxisEvidence{
			Axis:      axis,
			IntervalA: ivA,
			IntervalB: ivB,
			ASubsetB:  aSubsetB,
			BSubsetA:  bSubsetA,
		})
	}

	switch {
	case result.AImpliesB && result.BImpliesA:
		result.Relation = RelationEqual
	case result.AImpliesB:
		result.Relation = RelationNarrower
	case result.BImpliesA:
		result.Relation = RelationWider
	case anyDisjoint:
		result.Relation = RelationDisjoint
	default:
		result.Relation = RelationOverlapping
	}

	summary := "A→B=" + boolString(result.AImpliesB) + " B→A=" + boolString(result.BImpliesA)
	if anyUnsatisfiable {
		summary += " unsatisfiable"
	}
	e.logger.Debug("interval implication evaluated",
		"summary", summary, "relation", string(result.Relation), "axes", len(axes))

	return result
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func unionAxes(a, b map[string]Interval) []string {
	set := make(map[string]bool, len(a)+len(b))
	for axis := range a {
		set[axis] = true
	}
	for axis := range b {
		set[axis] = true
	}
	axes := make([]string, 0, len(set))
	for axis := range set {
		axes = append(axes, axis)
	}
	sort.Strings(axes)
	return axes
}

func intervalOrUnbounded(m map[string]Interval, axis string) Interval {
	if iv, ok := m[axis]; ok {
		return iv
	}
	return Unbounded()
}

// NormalizeIntervalMap converts the accepted external shapes into the
// canonical map form. It accepts map[string]Interval, map[string]*Interval,
// a decoded-JSON map of {lower, upper, unsatisfiable} objects, and
// two-element numeric arrays [lower, upper].
func NormalizeIntervalMap(raw interface{}) (map[string]Interval, bool) {
	switch m := raw.(type) {
	case nil:
		return map[string]Interval{}, true
	case map[string]Interval:
		return m, true
	case map[string]*Interval:
		out := make(map[string]Interval, len(m))
		for axis, iv := range m {
			if iv == nil {
				out[axis] = Unbounded()
				continue
			}
			out[axis] = *iv
		}
		return out, true
	case map[string]interface{}:
		out := make(map[string]Interval, len(m))
		for axis, entry := range m {
			iv, ok := normalizeInterval(entry)
			if !ok {
				return nil, false
			}
			out[axis] = iv
		}
		return out, true
	case map[string][2]float64:
		out := make(map[string]Interval, len(m))
		for axis, pair := range m {
			out[axis] = New(pair[0], pair[1])
		}
		return out, true
	default:
		return nil, false
	}
}

func normalizeInterval(entry interface{}) (Interval, bool) {
	switch v := entry.(type) {
	case Interval:
		return v, true
	case *Interval:
		if v == nil {
			return Unbounded(), true
		}
		return *v, true
	case []interface{}:
		if len(v) != 2 {
			return Interval{}, false
		}
		lower, okL := asFloat(v[0])
		upper, okU := asFloat(v[1])
		if !okL || !okU {
			return Interval{}, false
		}
		return New(lower, upper), true
	case []float64:
		if len(v) != 2 {
			return Interval{}, false
		}
		return New(v[0], v[1]), true
	case [2]float64:
		return New(v[0], v[1]), true
	case map[string]interface{}:
		iv := Unbounded()
		if lower, ok := v["lower"]; ok {
			value, okF := asFloat(lower)
			if !okF {
				return Interval{}, false
			}
			iv.Lower = value
		}
		if upper, ok := v["upper"]; ok {
			value, okF := asFloat(upper)
			if !okF {
				return Interval{}, false
			}
			iv.Upper = value
		}
		if unsat, ok := v["unsatisfiable"]; ok {
			flag, okB := unsat.(bool)
			if !okB {
				return Interval{}, false
			}
			iv.Unsatisfiable = flag
		}
		if iv.Lower > iv.Upper {
			iv.Unsatisfiable = true
		}
		return iv, true
	default:
		return Interval{}, false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
