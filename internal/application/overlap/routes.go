package overlap

import (
	"fmt"
	"log/slog"

	"github.com/blackms/prototype-overlap-go/internal/domain/gates"
	"github.com/blackms/prototype-overlap-go/internal/domain/intervals"
	domainOverlap "github.com/blackms/prototype-overlap-go/internal/domain/overlap"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// RouteBGateFilter re-admits pairs whose parsed gates describe nested or
// equal regions even though their weight geometry diverged. It only
// considers pairs whose gates are conjunctive enough to project onto
// intervals.
type RouteBGateFilter struct {
	config    Config
	evaluator *intervals.Evaluator
	logger    *slog.Logger
}

// NewRouteBGateFilter creates the gate-similarity route filter.
func NewRouteBGateFilter(config Config, logger *slog.Logger) *RouteBGateFilter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RouteBGateFilter{
		config:    config,
		evaluator: intervals.NewEvaluator(logger),
		logger:    logger,
	}
}

// FilterPairs implements PairFilter.
func (f *RouteBGateFilter) FilterPairs(pairs []*domainOverlap.CandidatePair) (*FilterResult, error) {
	result := &FilterResult{Candidates: make([]*domainOverlap.CandidatePair, 0)}
	result.Stats.PairsEvaluated = len(pairs)

	for _, pair := range pairs {
		mapA, okA := gateIntervals(pair.PrototypeA)
		mapB, okB := gateIntervals(pair.PrototypeB)
		if !okA || !okB {
			continue
		}
		sharedAxes := sharedAxisCount(mapA, mapB)
		if sharedAxes < f.config.RouteBMinSharedGateAxes {
			continue
		}

		verdict := f.evaluator.Evaluate(mapA, mapB)
		switch verdict.Relation {
		case intervals.RelationEqual, intervals.RelationNarrower, intervals.RelationWider:
			pair.SelectedBy = domainOverlap.RouteB
			pair.RouteMetrics = map[string]float64{
				"sharedGateAxes": float64(sharedAxes),
			}
			result.Candidates = append(result.Candidates, pair)
		}
	}
	return result, nil
}

func gateIntervals(p *shared.Prototype) (map[string]intervals.Interval, bool) {
	parsed := gates.Parse(p.Gates)
	if !parsed.ParseComplete {
		return nil, false
	}
	m, ok := gates.ExtractIntervals(parsed.AST)
	if !ok || len(m) == 0 {
		return nil, false
	}
	return m, true
}

func sharedAxisCount(a, b map[string]intervals.Interval) int {
	count := 0
	for axis := range a {
		if _, ok := b[axis]; ok {
			count++
		}
	}
	return count
}

// RouteCPrescanFilter re-admits pairs via a cheap coactivation prescan: a
// small fixed pool of contexts is sampled once and reused for every pair.
type RouteCPrescanFilter struct {
	config    Config
	generator shared.RandomStateGenerator
	builder   shared.ContextBuilder
	checker   shared.GateChecker
	logger    *slog.Logger

	pool []shared.EvalContext
}

// NewRouteCPrescanFilter creates the behavioral-prescan route filter.
func NewRouteCPrescanFilter(
	config Config,
	generator shared.RandomStateGenerator,
	builder shared.ContextBuilder,
	checker shared.GateChecker,
	logger *slog.Logger,
) (*RouteCPrescanFilter, error) {
	if generator == nil {
		return nil, fmt.Errorf("route C prescan filter: random state generator is required")
	}
	if builder == nil {
		return nil, fmt.Errorf("route C prescan filter: context builder is required")
	}
	if checker == nil {
		return nil, fmt.Errorf("route C prescan filter: gate checker is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RouteCPrescanFilter{
		config:    config,
		generator: generator,
		builder:   builder,
		checker:   checker,
		logger:    logger,
	}, nil
}

// FilterPairs implements PairFilter.
func (f *RouteCPrescanFilter) FilterPairs(pairs []*domainOverlap.CandidatePair) (*FilterResult, error) {
	result := &FilterResult{Candidates: make([]*domainOverlap.CandidatePair, 0)}
	result.Stats.PairsEvaluated = len(pairs)
	if len(pairs) == 0 {
		return result, nil
	}

	f.ensurePool()
	if len(f.pool) == 0 {
		return result, nil
	}

	for _, pair := range pairs {
		coactivation := f.coactivationRate(pair)
		if coactivation >= f.config.RouteCMinCoactivation {
			pair.SelectedBy = domainOverlap.RouteC
			pair.RouteMetrics = map[string]float64{
				"prescanCoactivationRate": coactivation,
			}
			result.Candidates = append(result.Candidates, pair)
		}
	}
	return result, nil
}

func (f *RouteCPrescanFilter) ensurePool() {
	if f.pool != nil {
		return
	}
	count := f.config.RouteCPrescanSamples
	if count <= 0 {
		count = 64
	}
	f.pool = make([]shared.EvalContext, 0, count)
	var previous shared.Context
	for i := 0; i < count; i++ {
		current := f.generator.Generate()
		f.pool = append(f.pool, f.builder.BuildContext(current, previous, nil))
		previous = current
	}
}

func (f *RouteCPrescanFilter) coactivationRate(pair *domainOverlap.CandidatePair) float64 {
	both := 0
	for _, ctx := range f.pool {
		if f.checker.CheckAllGatesPass(pair.PrototypeA.Gates, ctx) &&
			f.checker.CheckAllGatesPass(pair.PrototypeB.Gates, ctx) {
			both++
		}
	}
	return float64(both) / float64(len(f.pool))
}
