package overlap

import (
	"github.com/blackms/prototype-overlap-go/internal/domain/gates"
	domainOverlap "github.com/blackms/prototype-overlap-go/internal/domain/overlap"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// scriptedGenerator cycles through a fixed context sequence.
type scriptedGenerator struct {
	contexts []shared.Context
	i        int
}

func (g *scriptedGenerator) Generate() shared.Context {
	ctx := g.contexts[g.i%len(g.contexts)]
	g.i++
	return ctx
}

// passthroughBuilder exposes the current state unchanged.
type passthroughBuilder struct{}

func (passthroughBuilder) BuildContext(current, previous, traits shared.Context) shared.EvalContext {
	ctx := make(shared.EvalContext, len(current))
	for axis, value := range current {
		ctx[axis] = value
	}
	return ctx
}

// astChecker evaluates gates through the real parser.
type astChecker struct{}

func (astChecker) CheckAllGatesPass(spec shared.GateSpec, ctx shared.EvalContext) bool {
	return gates.Parse(spec).AST.Evaluate(ctx)
}

// weightedIntensity is the plain weighted-sum intensity.
type weightedIntensity struct{}

func (weightedIntensity) ComputeIntensity(weights map[string]float64, ctx shared.EvalContext) float64 {
	total := 0.0
	for axis, weight := range weights {
		if value, ok := ctx[axis]; ok {
			total += weight * value
		}
	}
	return total
}

// staticRegistry serves a fixed prototype slice.
type staticRegistry struct {
	prototypes []*shared.Prototype
	err        error
}

func (r staticRegistry) GetPrototypesByType(family string) ([]*shared.Prototype, error) {
	return r.prototypes, r.err
}

// admitAllFilter re-admits every pair it is given.
type admitAllFilter struct {
	calls int
}

func (f *admitAllFilter) FilterPairs(pairs []*domainOverlap.CandidatePair) (*FilterResult, error) {
	f.calls++
	result := &FilterResult{Candidates: pairs}
	result.Stats.PairsEvaluated = len(pairs)
	return result, nil
}

func testPrototype(id string, weights map[string]float64, gates shared.GateSpec) *shared.Prototype {
	return &shared.Prototype{ID: id, Type: "emotion", Weights: weights, Gates: gates}
}

func testConfig() Config {
	config := DefaultConfig()
	config.SampleCountPerPair = 50
	config.EnableMultiRoute = false
	config.EnableAxisGapAnalysis = false
	return config
}
