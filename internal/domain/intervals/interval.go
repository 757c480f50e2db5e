// Package intervals provides the per-axis interval model and the
// interval-map implication evaluator used for gate comparison.
package intervals

import "math"

// Interval is the reachable range of one axis under a gate. Bounds are
// closed; Lower may be -Inf and Upper +Inf for unconstrained sides. An
// unsatisfiable interval marks a provably empty range and is vacuously a
// subset of every interval.
type Interval struct {
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`
	Unsatisfiable bool    `json:"unsatisfiable"`
}

// Unbounded returns the unconstrained interval (-Inf, +Inf).
func Unbounded() Interval {
	return Interval{Lower: math.Inf(-1), Upper: math.Inf(1)}
}

// New builds an interval from bounds, marking it unsatisfiable when the
// bounds cross.
func New(lower, upper float64) Interval {
	return Interval{Lower: lower, Upper: upper, Unsatisfiable: lower > upper}
}

// SubsetOf reports whether every value in the interval also lies in other.
// An unsatisfiable interval is a subset of everything; nothing non-empty is
// a subset of an unsatisfiable interval.
func (iv Interval) SubsetOf(other Interval) bool {
	if iv.Unsatisfiable {
		return true
	}
	if other.Unsatisfiable {
		return false
	}
	return other.Lower <= iv.Lower && iv.Upper <= other.Upper
}

// DisjointFrom reports whether the two intervals share no value. Touching
// closed bounds are not disjoint, and unsatisfiable intervals are never
// reported disjoint.
func (iv Interval) DisjointFrom(other Interval) bool {
	if iv.Unsatisfiable || other.Unsatisfiable {
		return false
	}
	return iv.Upper < other.Lower || other.Upper < iv.Lower
}

// IsUnbounded reports whether the interval places no constraint on its axis.
func (iv Interval) IsUnbounded() bool {
	return !iv.Unsatisfiable && math.IsInf(iv.Lower, -1) && math.IsInf(iv.Upper, 1)
}
