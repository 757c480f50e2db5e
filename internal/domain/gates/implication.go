package gates

import "math"

// ImplicationResult reports whether one conjunctive gate implies another.
type ImplicationResult struct {
	Implies   bool `json:"implies"`
	IsVacuous bool `json:"isVacuous"`
}

// CheckImplication decides whether gate A implies gate B. The check is
// restricted to conjunctions of comparisons (a single comparison counts);
// anything else fails the implication. Vacuous cases: True implies True,
// anything implies True, and True never implies a real constraint.
func CheckImplication(a, b *Node) ImplicationResult {
	na := a.Normalize()
	nb := b.Normalize()

	if nb.IsTrue() {
		return ImplicationResult{Implies: true, IsVacuous: true}
	}
	if na.IsTrue() {
		// An unconstrained gate guarantees nothing about a real constraint.
		return ImplicationResult{Implies: false, IsVacuous: true}
	}

	compsA, okA := conjunctiveComparisons(na)
	compsB, okB := conjunctiveComparisons(nb)
	if !okA || !okB {
		return ImplicationResult{Implies: false, IsVacuous: false}
	}

	boundsA := collectAxisBounds(compsA)
	for _, comp := range compsB {
		summary, constrained := boundsA[comp.Axis]
		if !constrained {
			return ImplicationResult{Implies: false, IsVacuous: false}
		}
		if !summary.entails(comp) {
			return ImplicationResult{Implies: false, IsVacuous: false}
		}
	}
	return ImplicationResult{Implies: true, IsVacuous: false}
}

// conjunctiveComparisons returns the comparison leaves of a normalized AST
// when it is a pure conjunction (or a single comparison).
func conjunctiveComparisons(n *Node) ([]*Node, bool) {
	switch n.Kind {
	case KindComparison:
		return []*Node{n}, true
	case KindAnd:
		comps := make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			if child.Kind != KindComparison {
				return nil, false
			}
			comps = append(comps, child)
		}
		return comps, true
	default:
		return nil, false
	}
}

// axisBounds summarizes all comparisons a conjunction places on one axis.
type axisBounds struct {
	lower       float64
	lowerStrict bool
	hasLower    bool
	upper       float64
	upperStrict bool
	hasUpper    bool
	eq          []float64
	neq         []float64
}

func collectAxisBounds(comps []*Node) map[string]*axisBounds {
	bounds := make(map[string]*axisBounds)
	for _, comp := range comps {
		ab, ok := bounds[comp.Axis]
		if !ok {
			ab = &axisBounds{lower: math.Inf(-1), upper: math.Inf(1)}
			bounds[comp.Axis] = ab
		}
		switch comp.Op {
		case OpGTE:
			ab.tightenLower(comp.Threshold, false)
		case OpGT:
			ab.tightenLower(comp.Threshold, true)
		case OpLTE:
			ab.tightenUpper(comp.Threshold, false)
		case OpLT:
			ab.tightenUpper(comp.Threshold, true)
		case OpEQ:
			ab.eq = append(ab.eq, comp.Threshold)
			ab.tightenLower(comp.Threshold, false)
			ab.tightenUpper(comp.Threshold, false)
		case OpNEQ:
			ab.neq = append(ab.neq, comp.Threshold)
		}
	}
	return bounds
}

func (ab *axisBounds) tightenLower(value float64, strict bool) {
	if !ab.hasLower || value > ab.lower || (value == ab.lower && strict) {
		ab.lower = value
		ab.lowerStrict = strict
		ab.hasLower = true
	}
}

func (ab *axisBounds) tightenUpper(value float64, strict bool) {
	if !ab.hasUpper || value < ab.upper || (value == ab.upper && strict) {
		ab.upper = value
		ab.upperStrict = strict
		ab.hasUpper = true
	}
}

// entails reports whether every value admitted by these bounds satisfies the
// comparison, i.e. the bound on this side is at least as tight.
func (ab *axisBounds) entails(comp *Node) bool {
	t := comp.Threshold
	switch comp.Op {
	case OpGTE:
		return ab.hasLower && ab.lower >= t
	case OpGT:
		return ab.hasLower && (ab.lower > t || (ab.lower == t && ab.lowerStrict))
	case OpLTE:
		return ab.hasUpper && ab.upper <= t
	case OpLT:
		return ab.hasUpper && (ab.upper < t || (ab.upper == t && ab.upperStrict))
	case OpEQ:
		for _, v := range ab.eq {
			if v == t {
				return true
			}
		}
		// A pinned [t, t] range is the same equality.
		return ab.hasLower && ab.hasUpper && !ab.lowerStrict && !ab.upperStrict && ab.lower == t && ab.upper == t
	case OpNEQ:
		for _, v := range ab.neq {
			if v == t {
				return true
			}
		}
		for _, v := range ab.eq {
			if v != t {
				return true
			}
		}
		if ab.hasLower && (ab.lower > t || (ab.lower == t && ab.lowerStrict)) {
			return true
		}
		if ab.hasUpper && (ab.upper < t || (ab.upper == t && ab.upperStrict)) {
			return true
		}
		return false
	}
	return false
}
