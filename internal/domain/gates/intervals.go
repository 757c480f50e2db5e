package gates

import (
	"github.com/blackms/prototype-overlap-go/internal/domain/intervals"
)

// ExtractIntervals projects a conjunctive gate AST onto per-axis intervals.
// Equality pins the axis to the degenerate range [t, t]. Strict bounds
// collapse to their closed counterpart, and != comparisons contribute no
// bound (a single interval cannot express them) while still being honored by
// evaluation. The second return is false when the AST is not a conjunction
// of comparisons.
func ExtractIntervals(n *Node) (map[string]intervals.Interval, bool) {
	normalized := n.Normalize()
	if normalized.IsTrue() {
		return map[string]intervals.Interval{}, true
	}

	comps, ok := conjunctiveComparisons(normalized)
	if !ok {
		return nil, false
	}

	out := make(map[string]intervals.Interval)
	for _, comp := range comps {
		iv, present := out[comp.Axis]
		if !present {
			iv = intervals.Unbounded()
		}
		switch comp.Op {
		case OpGTE, OpGT:
			if comp.Threshold > iv.Lower {
				iv.Lower = comp.Threshold
			}
		case OpLTE, OpLT:
			if comp.Threshold < iv.Upper {
				iv.Upper = comp.Threshold
			}
		case OpEQ:
			if comp.Threshold > iv.Lower {
				iv.Lower = comp.Threshold
			}
			if comp.Threshold < iv.Upper {
				iv.Upper = comp.Threshold
			}
		case OpNEQ:
			// not representable as an interval bound
		}
		iv.Unsatisfiable = iv.Lower > iv.Upper
		out[comp.Axis] = iv
	}
	return out, true
}
