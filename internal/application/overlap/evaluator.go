package overlap

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/blackms/prototype-overlap-go/internal/domain/gates"
	domainOverlap "github.com/blackms/prototype-overlap-go/internal/domain/overlap"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// sampleChunkSize is the fixed progress-delivery chunk for Stage B sampling.
const sampleChunkSize = 500

// SampleProgress reports Stage B sampling progress at chunk boundaries and
// at completion.
type SampleProgress func(completed, total int)

// SampleVector is one prototype's pre-evaluated outcome for one pooled
// context.
type SampleVector struct {
	Passed    bool    `json:"passed"`
	Intensity float64 `json:"intensity"`
}

// PrecomputedVectors carries pre-evaluated sample outcomes for a pair,
// produced once against a shared context pool. Contexts is optional; without
// it divergence examples carry no originating context.
type PrecomputedVectors struct {
	VectorA  []SampleVector       `json:"vectorA"`
	VectorB  []SampleVector       `json:"vectorB"`
	Contexts []shared.EvalContext `json:"contexts,omitempty"`
}

// BehavioralOverlapEvaluator runs Stage B: Monte Carlo sampling estimates
// gate co-activation rates, intensity agreement, dominance, and worst
// divergence examples for one prototype pair. It performs no randomness of
// its own; determinism follows from the injected collaborators.
type BehavioralOverlapEvaluator struct {
	config    Config
	generator shared.RandomStateGenerator
	builder   shared.ContextBuilder
	checker   shared.GateChecker
	intensity shared.IntensityCalculator
	logger    *slog.Logger
}

// NewBehavioralOverlapEvaluator creates a Stage B evaluator. Every
// collaborator is required; a missing one fails construction immediately.
func NewBehavioralOverlapEvaluator(
	config Config,
	generator shared.RandomStateGenerator,
	builder shared.ContextBuilder,
	checker shared.GateChecker,
	intensity shared.IntensityCalculator,
	logger *slog.Logger,
) (*BehavioralOverlapEvaluator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("behavioral overlap evaluator: %w", err)
	}
	if generator == nil {
		return nil, fmt.Errorf("behavioral overlap evaluator: random state generator is required")
	}
	if builder == nil {
		return nil, fmt.Errorf("behavioral overlap evaluator: context builder is required")
	}
	if checker == nil {
		return nil, fmt.Errorf("behavioral overlap evaluator: gate checker is required")
	}
	if intensity == nil {
		return nil, fmt.Errorf("behavioral overlap evaluator: intensity calculator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BehavioralOverlapEvaluator{
		config:    config,
		generator: generator,
		builder:   builder,
		checker:   checker,
		intensity: intensity,
		logger:    logger,
	}, nil
}

// Evaluate runs sampling mode: it draws sampleCount contexts one at a time
// from the generator and scores both prototypes against each. A sampleCount
// of zero or less falls back to the configured per-pair budget.
func (e *BehavioralOverlapEvaluator) Evaluate(
	a, b *shared.Prototype,
	sampleCount int,
	onProgress SampleProgress,
) (*domainOverlap.BehaviorMetrics, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("behavioral overlap evaluator: both prototypes are required")
	}
	if sampleCount <= 0 {
		sampleCount = e.config.SampleCountPerPair
	}

	acc := newAccumulator(e.config, referencedAxes(a, b))
	var previous shared.Context
	for i := 1; i <= sampleCount; i++ {
		current := e.generator.Generate()
		ctx := e.builder.BuildContext(current, previous, nil)
		previous = current

		passedA := e.checker.CheckAllGatesPass(a.Gates, ctx)
		passedB := e.checker.CheckAllGatesPass(b.Gates, ctx)
		intensityA := e.intensity.ComputeIntensity(a.Weights, ctx)
		intensityB := e.intensity.ComputeIntensity(b.Weights, ctx)

		acc.observe(ctx, passedA, passedB, intensityA, intensityB)
		notifyChunk(onProgress, i, sampleCount)
	}

	return acc.metrics(), nil
}

// EvaluatePrecomputed runs precomputed mode over vectors evaluated once for
// a shared context pool, amortizing sampling cost across many pairs.
func (e *BehavioralOverlapEvaluator) EvaluatePrecomputed(
	a, b *shared.Prototype,
	vectors *PrecomputedVectors,
	onProgress SampleProgress,
) (*domainOverlap.BehaviorMetrics, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("behavioral overlap evaluator: both prototypes are required")
	}
	if vectors == nil {
		return nil, fmt.Errorf("behavioral overlap evaluator: precomputed vectors are required")
	}

	total := len(vectors.VectorA)
	if len(vectors.VectorB) < total {
		total = len(vectors.VectorB)
	}

	acc := newAccumulator(e.config, referencedAxes(a, b))
	for i := 0; i < total; i++ {
		var ctx shared.EvalContext
		if i < len(vectors.Contexts) {
			ctx = vectors.Contexts[i]
		}
		sa := vectors.VectorA[i]
		sb := vectors.VectorB[i]
		acc.observe(ctx, sa.Passed, sb.Passed, sa.Intensity, sb.Intensity)
		notifyChunk(onProgress, i+1, total)
	}
	if total == 0 && onProgress != nil {
		onProgress(0, 0)
	}

	return acc.metrics(), nil
}

// notifyChunk delivers progress once per chunk boundary plus once at
// completion; totals at or below one chunk get exactly one call.
func notifyChunk(onProgress SampleProgress, completed, total int) {
	if onProgress == nil {
		return
	}
	if completed%sampleChunkSize == 0 || completed == total {
		onProgress(completed, total)
	}
}

// referencedAxes collects the axes named by either prototype's weights or
// gates. Divergence summaries are restricted to this set so axes from other
// prototype families cannot leak in.
func referencedAxes(a, b *shared.Prototype) map[string]bool {
	axes := make(map[string]bool)
	for _, p := range []*shared.Prototype{a, b} {
		if p == nil {
			continue
		}
		for axis := range p.Weights {
			axes[axis] = true
		}
		parsed := gates.Parse(p.Gates)
		for _, axis := range parsed.AST.Axes() {
			axes[axis] = true
		}
	}
	return axes
}

// ============================================================================
// Sample Accumulation
// ============================================================================

type accumulator struct {
	config  Config
	axes    map[string]bool
	samples int

	bothCount   int
	eitherCount int
	pOnlyCount  int
	qOnlyCount  int

	jointCount  int
	sumA        float64
	sumB        float64
	sumAA       float64
	sumBB       float64
	sumAB       float64
	sumAbsDiff  float64
	dominateP   int
	dominateQ   int
	worstByDiff []domainOverlap.DivergenceExample
}

func newAccumulator(config Config, axes map[string]bool) *accumulator {
	return &accumulator{
		config:      config,
		axes:        axes,
		worstByDiff: make([]domainOverlap.DivergenceExample, 0, config.DivergenceExamplesK),
	}
}

func (acc *accumulator) observe(ctx shared.EvalContext, passedA, passedB bool, intensityA, intensityB float64) {
	acc.samples++

	switch {
	case passedA && passedB:
		acc.bothCount++
		acc.eitherCount++
	case passedA:
		acc.pOnlyCount++
		acc.eitherCount++
	case passedB:
		acc.qOnlyCount++
		acc.eitherCount++
	}

	if passedA && passedB {
		acc.jointCount++
		acc.sumA += intensityA
		acc.sumB += intensityB
		acc.sumAA += intensityA * intensityA
		acc.sumBB += intensityB * intensityB
		acc.sumAB += intensityA * intensityB
		acc.sumAbsDiff += math.Abs(intensityA - intensityB)
	}

	if intensityA > intensityB+acc.config.DominanceDelta {
		acc.dominateP++
	}
	if intensityB > intensityA+acc.config.DominanceDelta {
		acc.dominateQ++
	}

	acc.recordDivergence(ctx, intensityA, intensityB)
}

// recordDivergence keeps the top-K samples by absolute intensity difference,
// descending, with ties staying in discovery order.
func (acc *accumulator) recordDivergence(ctx shared.EvalContext, intensityA, intensityB float64) {
	k := acc.config.DivergenceExamplesK
	if k <= 0 {
		return
	}

	absDiff := math.Abs(intensityA - intensityB)
	if len(acc.worstByDiff) == k && absDiff <= acc.worstByDiff[k-1].AbsDiff {
		return
	}

	example := domainOverlap.DivergenceExample{
		Context:    ctx,
		IntensityA: intensityA,
		IntensityB: intensityB,
		AbsDiff:    absDiff,
		Summary:    acc.summarize(ctx),
	}

	insertAt := len(acc.worstByDiff)
	for insertAt > 0 && acc.worstByDiff[insertAt-1].AbsDiff < absDiff {
		insertAt--
	}
	acc.worstByDiff = append(acc.worstByDiff, domainOverlap.DivergenceExample{})
	copy(acc.worstByDiff[insertAt+1:], acc.worstByDiff[insertAt:])
	acc.worstByDiff[insertAt] = example
	if len(acc.worstByDiff) > k {
		acc.worstByDiff = acc.worstByDiff[:k]
	}
}

// summarize renders the context restricted to the referenced axes.
func (acc *accumulator) summarize(ctx shared.EvalContext) string {
	if len(ctx) == 0 {
		return ""
	}
	axes := make([]string, 0, len(acc.axes))
	for axis := range acc.axes {
		if _, ok := ctx.Lookup(axis); ok {
			axes = append(axes, axis)
		}
	}
	sort.Strings(axes)

	parts := make([]string, 0, len(axes))
	for _, axis := range axes {
		value, _ := ctx.Lookup(axis)
		parts = append(parts, axis+"="+strconv.FormatFloat(value, 'f', 3, 64))
	}
	return strings.Join(parts, " ")
}

func (acc *accumulator) metrics() *domainOverlap.BehaviorMetrics {
	metrics := &domainOverlap.BehaviorMetrics{
		SampleCount:        acc.samples,
		DivergenceExamples: acc.worstByDiff,
	}
	if acc.samples > 0 {
		n := float64(acc.samples)
		metrics.GateOverlap = domainOverlap.GateOverlap{
			OnEitherRate: float64(acc.eitherCount) / n,
			OnBothRate:   float64(acc.bothCount) / n,
			POnlyRate:    float64(acc.pOnlyCount) / n,
			QOnlyRate:    float64(acc.qOnlyCount) / n,
		}
		metrics.Intensity.DominanceP = float64(acc.dominateP) / n
		metrics.Intensity.DominanceQ = float64(acc.dominateQ) / n
	}

	if acc.jointCount == 0 {
		metrics.Intensity.PearsonCorrelation = math.NaN()
		metrics.Intensity.MeanAbsDiff = math.NaN()
		return metrics
	}

	joint := float64(acc.jointCount)
	metrics.Intensity.MeanAbsDiff = acc.sumAbsDiff / joint

	numerator := joint*acc.sumAB - acc.sumA*acc.sumB
	denominator := math.Sqrt(joint*acc.sumAA-acc.sumA*acc.sumA) * math.Sqrt(joint*acc.sumBB-acc.sumB*acc.sumB)
	if denominator == 0 {
		metrics.Intensity.PearsonCorrelation = math.NaN()
	} else {
		r := numerator / denominator
		// Guard against float drift past the legal range.
		metrics.Intensity.PearsonCorrelation = math.Max(-1, math.Min(1, r))
	}
	return metrics
}
