// Package gates provides the gate predicate AST, its parser, and the
// conjunctive implication checker for prototype admission gates.
package gates

import (
	"sort"
	"strconv"
	"strings"

	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// Operator is a comparison operator in a gate predicate.
type Operator string

const (
	OpGTE Operator = ">="
	OpGT  Operator = ">"
	OpLTE Operator = "<="
	OpLT  Operator = "<"
	OpEQ  Operator = "=="
	OpNEQ Operator = "!="
)

// Valid reports whether the operator is one of the supported comparisons.
func (op Operator) Valid() bool {
	switch op {
	case OpGTE, OpGT, OpLTE, OpLT, OpEQ, OpNEQ:
		return true
	}
	return false
}

// Mirror returns the operator with its direction flipped. It is used when a
// JSON-Logic comparison carries the variable as the second operand, so that
// threshold semantics stay "axis OP threshold".
func (op Operator) Mirror() Operator {
	switch op {
	case OpGTE:
		return OpLTE
	case OpGT:
		return OpLT
	case OpLTE:
		return OpGTE
	case OpLT:
		return OpGT
	default:
		return op
	}
}

// NodeKind discriminates the gate AST variants.
type NodeKind string

const (
	KindComparison NodeKind = "comparison"
	KindAnd        NodeKind = "and"
	KindOr         NodeKind = "or"
	KindNot        NodeKind = "not"
	KindTrue       NodeKind = "true"
)

// Node is one node of a gate predicate AST. Comparison nodes use Axis, Op
// and Threshold; And/Or nodes use Children; Not nodes use Operand. A Node of
// KindTrue is the explicit "no constraint" sentinel, never a nil pointer.
type Node struct {
	Kind      NodeKind `json:"kind"`
	Axis      string   `json:"axis,omitempty"`
	Op        Operator `json:"operator,omitempty"`
	Threshold float64  `json:"threshold,omitempty"`
	Children  []*Node  `json:"children,omitempty"`
	Operand   *Node    `json:"operand,omitempty"`
}

// True returns the unconstrained sentinel node.
func True() *Node {
	return &Node{Kind: KindTrue}
}

// Comparison builds a comparison node.
func Comparison(axis string, op Operator, threshold float64) *Node {
	return &Node{Kind: KindComparison, Axis: axis, Op: op, Threshold: threshold}
}

// And builds a conjunction node.
func And(children ...*Node) *Node {
	return &Node{Kind: KindAnd, Children: children}
}

// Or builds a disjunction node.
func Or(children ...*Node) *Node {
	return &Node{Kind: KindOr, Children: children}
}

// Not builds a negation node.
func Not(operand *Node) *Node {
	return &Node{Kind: KindNot, Operand: operand}
}

// IsTrue reports whether the node is the unconstrained sentinel.
func (n *Node) IsTrue() bool {
	return n == nil || n.Kind == KindTrue
}

// String renders the canonical serialization of the AST. And children are
// joined with " AND ", Or children with " OR " (parenthesized when nested
// under an And), Not renders "NOT (expr)", and the sentinel renders "true".
func (n *Node) String() string {
	if n.IsTrue() {
		return "true"
	}
	return n.render(false)
}

func (n *Node) render(insideAnd bool) string {
	switch n.Kind {
	case KindComparison:
		return n.Axis + " " + string(n.Op) + " " + formatThreshold(n.Threshold)
	case KindAnd:
		parts := make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			parts = append(parts, child.render(true))
		}
		return strings.Join(parts, " AND ")
	case KindOr:
		parts := make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			parts = append(parts, child.render(false))
		}
		joined := strings.Join(parts, " OR ")
		if insideAnd {
			return "(" + joined + ")"
		}
		return joined
	case KindNot:
		return "NOT (" + n.Operand.render(false) + ")"
	default:
		return "true"
	}
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Evaluate evaluates the predicate against a context. A comparison whose
// axis is absent from the context is vacuously satisfied.
func (n *Node) Evaluate(ctx shared.EvalContext) bool {
	if n.IsTrue() {
		return true
	}
	switch n.Kind {
	case KindComparison:
		value, ok := ctx.Lookup(n.Axis)
		if !ok {
			return true
		}
		return compare(value, n.Op, n.Threshold)
	case KindAnd:
		for _, child := range n.Children {
			if !child.Evaluate(ctx) {
				return false
			}
		}
		return true
	case KindOr:
		if len(n.Children) == 0 {
			return true
		}
		for _, child := range n.Children {
			if child.Evaluate(ctx) {
				return true
			}
		}
		return false
	case KindNot:
		return !n.Operand.Evaluate(ctx)
	default:
		return true
	}
}

func compare(value float64, op Operator, threshold float64) bool {
	switch op {
	case OpGTE:
		return value >= threshold
	case OpGT:
		return value > threshold
	case OpLTE:
		return value <= threshold
	case OpLT:
		return value < threshold
	case OpEQ:
		return value == threshold
	case OpNEQ:
		return value != threshold
	}
	return false
}

// Normalize returns the canonical form of the AST: nested conjunctions and
// disjunctions are flattened into their parent, exact-duplicate comparisons
// are removed, children are sorted by axis name, and single-child compounds
// collapse to the child. Normalize is idempotent.
func (n *Node) Normalize() *Node {
	if n.IsTrue() {
		return True()
	}
	switch n.Kind {
	case KindComparison:
		return Comparison(n.Axis, n.Op, n.Threshold)
	case KindNot:
		return Not(n.Operand.Normalize())
	case KindAnd, KindOr:
		flattened := make([]*Node, 0, len(n.Children))
		seen := make(map[string]bool)
		for _, child := range n.Children {
			normalized := child.Normalize()
			if normalized.Kind == n.Kind {
				for _, grandchild := range normalized.Children {
					flattened = appendDedup(flattened, grandchild, seen)
				}
				continue
			}
			flattened = appendDedup(flattened, normalized, seen)
		}
		if len(flattened) == 0 {
			return True()
		}
		if len(flattened) == 1 {
			return flattened[0]
		}
		sort.SliceStable(flattened, func(i, j int) bool {
			return flattened[i].sortKey() < flattened[j].sortKey()
		})
		return &Node{Kind: n.Kind, Children: flattened}
	default:
		return True()
	}
}

func appendDedup(children []*Node, child *Node, seen map[string]bool) []*Node {
	if child.Kind == KindComparison {
		key := child.sortKey()
		if seen[key] {
			return children
		}
		seen[key] = true
	}
	return append(children, child)
}

// sortKey orders children deterministically: comparisons by axis first, then
// operator and threshold; compound children by their serialization.
func (n *Node) sortKey() string {
	if n.Kind == KindComparison {
		return n.Axis + "\x00" + string(n.Op) + "\x00" + formatThreshold(n.Threshold)
	}
	return "\x7f" + n.String()
}

// Axes returns the sorted set of axis names referenced anywhere in the AST.
func (n *Node) Axes() []string {
	set := make(map[string]bool)
	n.collectAxes(set)
	axes := make([]string, 0, len(set))
	for axis := range set {
		axes = append(axes, axis)
	}
	sort.Strings(axes)
	return axes
}

func (n *Node) collectAxes(set map[string]bool) {
	if n.IsTrue() {
		return
	}
	switch n.Kind {
	case KindComparison:
		set[n.Axis] = true
	case KindAnd, KindOr:
		for _, child := range n.Children {
			child.collectAxes(set)
		}
	case KindNot:
		n.Operand.collectAxes(set)
	}
}
