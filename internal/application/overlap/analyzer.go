package overlap

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/blackms/prototype-overlap-go/internal/domain/intervals"
	domainOverlap "github.com/blackms/prototype-overlap-go/internal/domain/overlap"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// Stage identifies one phase of an analysis run for progress reporting.
type Stage string

const (
	StageSetup      Stage = "setup"
	StageFiltering  Stage = "filtering"
	StageEvaluating Stage = "evaluating"
	StageAxisGap    Stage = "axis_gap_analysis"
)

// Analysis modes reported in result metadata.
const (
	ModeSampling   = "sampling"
	ModeSharedPool = "shared_pool"
)

// ProgressData carries the payload of one progress event. StageNumber and
// TotalStages let a caller render one linear progress bar across stages.
type ProgressData struct {
	StageNumber int    `json:"stageNumber"`
	TotalStages int    `json:"totalStages"`
	Phase       string `json:"phase,omitempty"`
	Current     int    `json:"current,omitempty"`
	Total       int    `json:"total,omitempty"`
	PairIndex   int    `json:"pairIndex,omitempty"`
	PairTotal   int    `json:"pairTotal,omitempty"`
	SampleIndex int    `json:"sampleIndex,omitempty"`
	SampleTotal int    `json:"sampleTotal,omitempty"`
}

// ProgressFunc receives synchronous progress events during an analysis run.
type ProgressFunc func(stage Stage, data ProgressData)

// AnalyzeOptions parameterizes one analysis run.
type AnalyzeOptions struct {
	// PrototypeFamily selects which prototypes to analyze. Defaults to
	// "emotion".
	PrototypeFamily string

	// SampleCount overrides the configured per-pair sample budget when
	// positive.
	SampleCount int

	// OnProgress, when set, receives staged progress events.
	OnProgress ProgressFunc
}

// AnalyzerCollaborators bundles the injected collaborators of the analyzer.
// Registry, Generator, ContextBuilder, GateChecker, IntensityCalculator and
// RecommendationBuilder are required; the rest are optional.
type AnalyzerCollaborators struct {
	Registry              shared.Registry
	Generator             shared.RandomStateGenerator
	ContextBuilder        shared.ContextBuilder
	GateChecker           shared.GateChecker
	IntensityCalculator   shared.IntensityCalculator
	RecommendationBuilder RecommendationBuilder
	RouteBFilter          PairFilter
	RouteCFilter          PairFilter
	AxisGapAnalyzer       AxisGapAnalyzer
	Logger                *slog.Logger
}

// PrototypeOverlapAnalyzer orchestrates the full pipeline: candidate
// filtering, behavioral evaluation, classification, and recommendation
// assembly. The analyzer holds no mutable state between Analyze calls
// besides its injected collaborators, so concurrent calls are safe as long
// as the collaborators are reentrant.
type PrototypeOverlapAnalyzer struct {
	config       Config
	registry     shared.Registry
	generator    shared.RandomStateGenerator
	builder      shared.ContextBuilder
	checker      shared.GateChecker
	intensity    shared.IntensityCalculator
	recommender  RecommendationBuilder
	axisGap      AxisGapAnalyzer
	filter       *CandidatePairFilter
	evaluator    *BehavioralOverlapEvaluator
	classifier   *OverlapClassifier
	intervalEval *intervals.Evaluator
	logger       *slog.Logger
}

// NewPrototypeOverlapAnalyzer creates the orchestrator, failing fast when a
// required collaborator or config key is missing.
func NewPrototypeOverlapAnalyzer(config Config, collab AnalyzerCollaborators) (*PrototypeOverlapAnalyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("prototype overlap analyzer: %w", err)
	}
	if collab.Registry == nil {
		return nil, fmt.Errorf("prototype overlap analyzer: registry is required")
	}
	if collab.Generator == nil {
		return nil, fmt.Errorf("prototype overlap analyzer: random state generator is required")
	}
	if collab.ContextBuilder == nil {
		return nil, fmt.Errorf("prototype overlap analyzer: context builder is required")
	}
	if collab.GateChecker == nil {
		return nil, fmt.Errorf("prototype overlap analyzer: gate checker is required")
	}
	if collab.IntensityCalculator == nil {
		return nil, fmt.Errorf("prototype overlap analyzer: intensity calculator is required")
	}
	if collab.RecommendationBuilder == nil {
		return nil, fmt.Errorf("prototype overlap analyzer: recommendation builder is required")
	}

	logger := collab.Logger
	if logger == nil {
		logger = slog.Default()
	}

	filter, err := NewCandidatePairFilter(config, collab.RouteBFilter, collab.RouteCFilter, logger)
	if err != nil {
		return nil, err
	}
	evaluator, err := NewBehavioralOverlapEvaluator(
		config, collab.Generator, collab.ContextBuilder, collab.GateChecker, collab.IntensityCalculator, logger)
	if err != nil {
		return nil, err
	}

	return &PrototypeOverlapAnalyzer{
		config:       config,
		registry:     collab.Registry,
		generator:    collab.Generator,
		builder:      collab.ContextBuilder,
		checker:      collab.GateChecker,
		intensity:    collab.IntensityCalculator,
		recommender:  collab.RecommendationBuilder,
		axisGap:      collab.AxisGapAnalyzer,
		filter:       filter,
		evaluator:    evaluator,
		classifier:   NewOverlapClassifier(config),
		intervalEval: intervals.NewEvaluator(logger),
		logger:       logger,
	}, nil
}

// Analyze runs the full pipeline for one prototype family and returns a
// fresh result. Errors in mandatory stages propagate; the optional axis-gap
// pass degrades to a nil report.
func (a *PrototypeOverlapAnalyzer) Analyze(opts AnalyzeOptions) (*domainOverlap.AnalysisResult, error) {
	family := opts.PrototypeFamily
	if family == "" {
		family = "emotion"
	}
	sampleCount := opts.SampleCount
	if sampleCount <= 0 {
		sampleCount = a.config.SampleCountPerPair
	}

	mode := ModeSampling
	if a.config.UseSharedSamplePool {
		mode = ModeSharedPool
	}

	result := &domainOverlap.AnalysisResult{
		Recommendations: make([]*domainOverlap.Recommendation, 0),
		Metadata: domainOverlap.AnalysisMetadata{
			RunID:              uuid.New().String(),
			PrototypeFamily:    family,
			SampleCountPerPair: sampleCount,
			AnalysisMode:       mode,
		},
	}

	prototypes, err := a.registry.GetPrototypesByType(family)
	if err != nil {
		return nil, fmt.Errorf("fetching prototypes for family %q: %w", family, err)
	}
	result.Metadata.TotalPrototypes = len(prototypes)
	if len(prototypes) < 2 {
		a.logger.Info("fewer than two prototypes in family, nothing to analyze",
			"family", family, "count", len(prototypes))
		return result, nil
	}

	stages := a.planStages(mode)

	// Stage A: geometric candidate filtering.
	filterStage := stages.number(StageFiltering)
	filtered, err := a.filter.FilterCandidates(prototypes, func(current, total int) {
		emit(opts.OnProgress, StageFiltering, ProgressData{
			StageNumber: filterStage, TotalStages: stages.total,
			Current: current, Total: total,
		})
	})
	if err != nil {
		return nil, err
	}
	result.Metadata.CandidatePairsFound = len(filtered.Candidates)

	candidates := filtered.Candidates
	if len(candidates) > a.config.MaxCandidatePairs {
		a.logger.Warn("candidate pairs exceed limit, truncating",
			"found", len(candidates), "limit", a.config.MaxCandidatePairs)
		candidates = candidates[:a.config.MaxCandidatePairs]
	}
	result.Metadata.CandidatePairsEvaluated = len(candidates)

	// Shared-pool setup when configured.
	var pool *samplePool
	if mode == ModeSharedPool {
		pool = a.buildSamplePool(prototypes, sampleCount, stages, opts.OnProgress)
	}

	// Stages B and C per pair.
	evalStage := stages.number(StageEvaluating)
	pairResults := make([]*PairResult, 0, len(candidates))
	for i, pair := range candidates {
		behavior, err := a.evaluatePair(pair, pool, sampleCount, func(completed, total int) {
			emit(opts.OnProgress, StageEvaluating, ProgressData{
				StageNumber: evalStage, TotalStages: stages.total,
				PairIndex: i + 1, PairTotal: len(candidates),
				SampleIndex: completed, SampleTotal: total,
			})
		})
		if err != nil {
			return nil, fmt.Errorf("evaluating pair %s: %w", pair.Key(), err)
		}
		a.attachImplicationEvidence(pair, behavior)

		classification := a.classifier.Classify(&pair.Metrics, behavior)
		pairResults = append(pairResults, &PairResult{
			Pair:           pair,
			Behavior:       behavior,
			Classification: classification,
		})

		if !classification.Type.IsRedundant() {
			continue
		}
		banding := a.bandingSuggestions(pair, classification.Type)
		recommendation, err := a.recommender.Build(
			pair.PrototypeA, pair.PrototypeB, classification,
			&pair.Metrics, behavior, behavior.DivergenceExamples, banding, family)
		if err != nil {
			return nil, fmt.Errorf("building recommendation for pair %s: %w", pair.Key(), err)
		}
		result.Recommendations = append(result.Recommendations, recommendation)
	}
	result.Metadata.RedundantPairsFound = len(result.Recommendations)

	// Optional axis-gap post-pass; failures degrade to a nil report.
	if a.config.EnableAxisGapAnalysis && a.axisGap != nil {
		gapStage := stages.number(StageAxisGap)
		report, err := a.axisGap.Analyze(prototypes, poolVectors(pool), poolProfiles(pool), pairResults,
			func(current, total int) {
				emit(opts.OnProgress, StageAxisGap, ProgressData{
					StageNumber: gapStage, TotalStages: stages.total,
					Current: current, Total: total,
				})
			})
		if err != nil {
			a.logger.Error("axis gap analysis failed, continuing without it", "error", err)
		} else {
			result.AxisGapAnalysis = report
		}
	}

	sort.SliceStable(result.Recommendations, func(i, j int) bool {
		return result.Recommendations[i].Severity > result.Recommendations[j].Severity
	})
	return result, nil
}

func emit(onProgress ProgressFunc, stage Stage, data ProgressData) {
	if onProgress != nil {
		onProgress(stage, data)
	}
}

// ============================================================================
// Stage Planning
// ============================================================================

type stagePlan struct {
	order []Stage
	total int
}

func (sp stagePlan) number(stage Stage) int {
	for i, s := range sp.order {
		if s == stage {
			return i + 1
		}
	}
	return 0
}

func (a *PrototypeOverlapAnalyzer) planStages(mode string) stagePlan {
	order := make([]Stage, 0, 4)
	if mode == ModeSharedPool {
		order = append(order, StageSetup)
	}
	order = append(order, StageFiltering, StageEvaluating)
	if a.config.EnableAxisGapAnalysis && a.axisGap != nil {
		order = append(order, StageAxisGap)
	}
	return stagePlan{order: order, total: len(order)}
}

// ============================================================================
// Shared Sample Pool
// ============================================================================

type samplePool struct {
	contexts []shared.EvalContext
	vectors  map[string][]SampleVector
	profiles map[string]*PrototypeProfile
}

// buildSamplePool generates one context pool and evaluates every prototype
// against it, amortizing sampling across all pairs.
func (a *PrototypeOverlapAnalyzer) buildSamplePool(
	prototypes []*shared.Prototype,
	sampleCount int,
	stages stagePlan,
	onProgress ProgressFunc,
) *samplePool {
	setupStage := stages.number(StageSetup)
	pool := &samplePool{
		contexts: make([]shared.EvalContext, 0, sampleCount),
		vectors:  make(map[string][]SampleVector, len(prototypes)),
		profiles: make(map[string]*PrototypeProfile, len(prototypes)),
	}

	var previous shared.Context
	for i := 0; i < sampleCount; i++ {
		current := a.generator.Generate()
		pool.contexts = append(pool.contexts, a.builder.BuildContext(current, previous, nil))
		previous = current
		if (i+1)%sampleChunkSize == 0 || i+1 == sampleCount {
			emit(onProgress, StageSetup, ProgressData{
				StageNumber: setupStage, TotalStages: stages.total,
				Phase: "pool", Current: i + 1, Total: sampleCount,
			})
		}
	}

	for i, p := range prototypes {
		vector := make([]SampleVector, len(pool.contexts))
		for j, ctx := range pool.contexts {
			vector[j] = SampleVector{
				Passed:    a.checker.CheckAllGatesPass(p.Gates, ctx),
				Intensity: a.intensity.ComputeIntensity(p.Weights, ctx),
			}
		}
		pool.vectors[p.ID] = vector
		emit(onProgress, StageSetup, ProgressData{
			StageNumber: setupStage, TotalStages: stages.total,
			Phase: "vectors", Current: i + 1, Total: len(prototypes),
		})
	}

	for i, p := range prototypes {
		vector := pool.vectors[p.ID]
		profile := &PrototypeProfile{}
		if len(vector) > 0 {
			passed := 0
			sum := 0.0
			for _, s := range vector {
				if s.Passed {
					passed++
				}
				sum += s.Intensity
			}
			profile.PassRate = float64(passed) / float64(len(vector))
			profile.MeanIntensity = sum / float64(len(vector))
		}
		pool.profiles[p.ID] = profile
		emit(onProgress, StageSetup, ProgressData{
			StageNumber: setupStage, TotalStages: stages.total,
			Phase: "profiles", Current: i + 1, Total: len(prototypes),
		})
	}

	return pool
}

func (a *PrototypeOverlapAnalyzer) evaluatePair(
	pair *domainOverlap.CandidatePair,
	pool *samplePool,
	sampleCount int,
	onProgress SampleProgress,
) (*domainOverlap.BehaviorMetrics, error) {
	if pool != nil {
		return a.evaluator.EvaluatePrecomputed(pair.PrototypeA, pair.PrototypeB, &PrecomputedVectors{
			VectorA:  pool.vectors[pair.PrototypeA.ID],
			VectorB:  pool.vectors[pair.PrototypeB.ID],
			Contexts: pool.contexts,
		}, onProgress)
	}
	return a.evaluator.Evaluate(pair.PrototypeA, pair.PrototypeB, sampleCount, onProgress)
}

func poolVectors(pool *samplePool) map[string][]SampleVector {
	if pool == nil {
		return nil
	}
	return pool.vectors
}

func poolProfiles(pool *samplePool) map[string]*PrototypeProfile {
	if pool == nil {
		return nil
	}
	return pool.profiles
}

// ============================================================================
// Evidence Helpers
// ============================================================================

// attachImplicationEvidence adds interval implication evidence when both
// gates project onto intervals.
func (a *PrototypeOverlapAnalyzer) attachImplicationEvidence(
	pair *domainOverlap.CandidatePair,
	behavior *domainOverlap.BehaviorMetrics,
) {
	mapA, okA := gateIntervals(pair.PrototypeA)
	mapB, okB := gateIntervals(pair.PrototypeB)
	if !okA || !okB {
		return
	}
	behavior.ImplicationResult = a.intervalEval.Evaluate(mapA, mapB)
}

// bandingSuggestions proposes tightened per-axis gate bands for the
// configured classification types.
func (a *PrototypeOverlapAnalyzer) bandingSuggestions(
	pair *domainOverlap.CandidatePair,
	classType domainOverlap.ClassificationType,
) []domainOverlap.BandingSuggestion {
	enabled := false
	for _, t := range a.config.BandingSuggestionTypes {
		if t == classType {
			enabled = true
			break
		}
	}
	if !enabled {
		return []domainOverlap.BandingSuggestion{}
	}

	mapA, okA := gateIntervals(pair.PrototypeA)
	mapB, okB := gateIntervals(pair.PrototypeB)
	if !okA || !okB {
		return []domainOverlap.BandingSuggestion{}
	}

	axes := make([]string, 0, len(mapA))
	for axis := range mapA {
		if _, ok := mapB[axis]; ok {
			axes = append(axes, axis)
		}
	}
	sort.Strings(axes)

	suggestions := make([]domainOverlap.BandingSuggestion, 0, len(axes))
	for _, axis := range axes {
		ivA, ivB := mapA[axis], mapB[axis]
		band := intervals.New(maxFloat(ivA.Lower, ivB.Lower), minFloat(ivA.Upper, ivB.Upper))
		if band.Unsatisfiable {
			continue
		}
		suggestions = append(suggestions, domainOverlap.BandingSuggestion{
			Axis:          axis,
			SuggestedBand: band,
			Reason:        "intersection of both gate ranges",
		})
	}
	return suggestions
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
