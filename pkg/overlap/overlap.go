// Package overlap provides the public API for prototype-overlap-go.
//
// This package provides a high-level interface for detecting redundant
// prototypes: pairs whose gating and weight vectors make them fire together
// with near-identical intensities.
//
// Example:
//
//	analyzer, err := overlap.NewAnalyzer(overlap.DefaultConfig(), overlap.AnalyzerOptions{
//	    Prototypes: prototypes,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := analyzer.Analyze(overlap.AnalyzeOptions{PrototypeFamily: "emotion"})
package overlap

import (
	"fmt"
	"log/slog"

	appOverlap "github.com/blackms/prototype-overlap-go/internal/application/overlap"
	"github.com/blackms/prototype-overlap-go/internal/domain/gates"
	"github.com/blackms/prototype-overlap-go/internal/domain/intervals"
	domainOverlap "github.com/blackms/prototype-overlap-go/internal/domain/overlap"
	"github.com/blackms/prototype-overlap-go/internal/infrastructure/registry"
	"github.com/blackms/prototype-overlap-go/internal/infrastructure/sampling"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// Re-export types for public API
type (
	// Prototype and context types
	Prototype   = shared.Prototype
	GateSpec    = shared.GateSpec
	Context     = shared.Context
	EvalContext = shared.EvalContext
	Registry    = shared.Registry

	// Pipeline configuration and orchestration
	Config         = appOverlap.Config
	Analyzer       = appOverlap.PrototypeOverlapAnalyzer
	AnalyzeOptions = appOverlap.AnalyzeOptions
	ProgressFunc   = appOverlap.ProgressFunc
	ProgressData   = appOverlap.ProgressData
	Stage          = appOverlap.Stage

	// Result types
	AnalysisResult     = domainOverlap.AnalysisResult
	Recommendation     = domainOverlap.Recommendation
	Classification     = domainOverlap.Classification
	ClassificationType = domainOverlap.ClassificationType
	CandidatePair      = domainOverlap.CandidatePair
	CandidateMetrics   = domainOverlap.CandidateMetrics
	BehaviorMetrics    = domainOverlap.BehaviorMetrics
	DivergenceExample  = domainOverlap.DivergenceExample
	BandingSuggestion  = domainOverlap.BandingSuggestion
	AxisGapReport      = domainOverlap.AxisGapReport

	// Interval evidence types
	Interval           = intervals.Interval
	ImplicationVerdict = intervals.Result

	// Sampling types
	AxisSpec = sampling.AxisSpec
)

// Classification constants.
const (
	ClassMergeRecommended    = domainOverlap.ClassMergeRecommended
	ClassSubsumedRecommended = domainOverlap.ClassSubsumedRecommended
	ClassConvertToExpression = domainOverlap.ClassConvertToExpression
	ClassNestedSiblings      = domainOverlap.ClassNestedSiblings
	ClassNeedsSeparation     = domainOverlap.ClassNeedsSeparation
	ClassKeepDistinct        = domainOverlap.ClassKeepDistinct
)

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return appOverlap.DefaultConfig()
}

// AnalyzerOptions configures NewAnalyzer. Exactly one of Prototypes or
// Registry must be provided; every other field has a sensible default.
type AnalyzerOptions struct {
	// Prototypes, when set, are served from an in-memory registry.
	Prototypes []*Prototype

	// Registry overrides the in-memory registry with a custom source.
	Registry Registry

	// Axes is the sampling schema (sampling.DefaultAxes when empty).
	Axes []AxisSpec

	// Seed makes Monte Carlo sampling reproducible. Zero means seed 1.
	Seed int64

	// Logger receives pipeline diagnostics (slog.Default when nil).
	Logger *slog.Logger
}

// NewAnalyzer wires an analyzer with the default collaborators: seeded
// uniform sampling, cached gate evaluation, weighted-sum intensity, and the
// optional multi-route filters when the config enables them.
func NewAnalyzer(config Config, opts AnalyzerOptions) (*Analyzer, error) {
	reg := opts.Registry
	if reg == nil {
		if len(opts.Prototypes) == 0 {
			return nil, fmt.Errorf("overlap: either Prototypes or Registry must be provided")
		}
		memReg := registry.NewMemoryRegistry()
		memReg.RegisterAll(opts.Prototypes)
		reg = memReg
	}

	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	generator := sampling.NewDefaultRandomStateGenerator(opts.Axes, seed)
	builder := sampling.NewDefaultContextBuilder()
	checker, err := sampling.NewDefaultGateChecker(0)
	if err != nil {
		return nil, err
	}

	collab := appOverlap.AnalyzerCollaborators{
		Registry:              reg,
		Generator:             generator,
		ContextBuilder:        builder,
		GateChecker:           checker,
		IntensityCalculator:   sampling.NewDefaultIntensityCalculator(),
		RecommendationBuilder: appOverlap.NewDefaultRecommendationBuilder(),
		Logger:                logger,
	}
	if config.EnableMultiRoute {
		collab.RouteBFilter = appOverlap.NewRouteBGateFilter(config, logger)
		routeC, err := appOverlap.NewRouteCPrescanFilter(config, generator, builder, checker, logger)
		if err != nil {
			return nil, err
		}
		collab.RouteCFilter = routeC
	}
	if config.EnableAxisGapAnalysis {
		collab.AxisGapAnalyzer = appOverlap.NewDefaultAxisGapAnalyzer(config)
	}

	return appOverlap.NewPrototypeOverlapAnalyzer(config, collab)
}

// ParseGates parses a gate specification into its canonical string form.
// The second return reports whether every element parsed cleanly.
func ParseGates(spec GateSpec) (string, bool) {
	parsed := gates.Parse(spec)
	return parsed.AST.Normalize().String(), parsed.ParseComplete
}

// CheckImplication reports whether gate specification a implies gate
// specification b under conjunctive interval semantics.
func CheckImplication(a, b GateSpec) (implies, vacuous bool) {
	result := gates.CheckImplication(gates.Parse(a).AST.Normalize(), gates.Parse(b).AST.Normalize())
	return result.Implies, result.IsVacuous
}
