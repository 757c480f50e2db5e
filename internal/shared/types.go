// Package shared provides shared types used across all modules in prototype-overlap-go.
package shared

// ============================================================================
// Prototype Types
// ============================================================================

// GateSpec is the raw, unparsed gate definition attached to a prototype.
// It may be a predicate string, a slice of predicate strings/objects that are
// implicitly AND-ed, or a JSON-Logic-like object tree. Parsing is lazy and
// happens in the gates domain package.
type GateSpec interface{}

// Prototype is a weighted linear scoring rule with boolean admission gates.
// Prototypes are immutable inputs owned by their registry; the analysis
// pipeline only reads them.
type Prototype struct {
	ID      string             `json:"id"`
	Type    string             `json:"type"`
	Weights map[string]float64 `json:"weights"`
	Gates   GateSpec           `json:"gates,omitempty"`
}

// HasUsableWeights reports whether the prototype carries a non-empty numeric
// weight map. Prototypes without one cannot participate in overlap analysis.
func (p *Prototype) HasUsableWeights() bool {
	return p != nil && len(p.Weights) > 0
}

// ============================================================================
// Context Types
// ============================================================================

// Context is a raw numeric state snapshot keyed by axis name.
type Context map[string]float64

// EvalContext is the merged evaluation context a prototype's gates and
// weights are scored against.
type EvalContext map[string]float64

// Lookup returns the value of an axis and whether it is present.
func (c EvalContext) Lookup(axis string) (float64, bool) {
	v, ok := c[axis]
	return v, ok
}

// ============================================================================
// Collaborator Contracts
// ============================================================================

// Registry provides prototype lookup by family.
type Registry interface {
	GetPrototypesByType(family string) ([]*Prototype, error)
}

// RandomStateGenerator produces raw sampled contexts for behavioral analysis.
type RandomStateGenerator interface {
	Generate() Context
}

// ContextBuilder assembles an evaluation context from a current state, an
// optional previous state, and trait values.
type ContextBuilder interface {
	BuildContext(current, previous, traits Context) EvalContext
}

// GateChecker decides whether all gates of a prototype pass for a context.
type GateChecker interface {
	CheckAllGatesPass(gates GateSpec, ctx EvalContext) bool
}

// IntensityCalculator computes the weighted-sum intensity of a prototype
// against a context.
type IntensityCalculator interface {
	ComputeIntensity(weights map[string]float64, ctx EvalContext) float64
}
