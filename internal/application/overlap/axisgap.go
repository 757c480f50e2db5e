package overlap

import (
	"sort"

	"github.com/blackms/prototype-overlap-go/internal/domain/gates"
	domainOverlap "github.com/blackms/prototype-overlap-go/internal/domain/overlap"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// PrototypeProfile summarizes one prototype's sampled behavior across the
// shared pool.
type PrototypeProfile struct {
	PassRate      float64 `json:"passRate"`
	MeanIntensity float64 `json:"meanIntensity"`
}

// PairResult bundles everything the pipeline learned about one pair.
type PairResult struct {
	Pair           *domainOverlap.CandidatePair   `json:"pair"`
	Behavior       *domainOverlap.BehaviorMetrics `json:"behavior"`
	Classification *domainOverlap.Classification  `json:"classification"`
}

// AxisGapAnalyzer is the optional family-wide coverage post-pass. Failures
// are caught by the orchestrator and degrade the report to nil.
type AxisGapAnalyzer interface {
	Analyze(
		prototypes []*shared.Prototype,
		vectors map[string][]SampleVector,
		profiles map[string]*PrototypeProfile,
		pairResults []*PairResult,
		onProgress func(current, total int),
	) (*domainOverlap.AxisGapReport, error)
}

// DefaultAxisGapAnalyzer flags axes with systematically low coverage: axes
// that almost no prototype in the family weighs or gates on.
type DefaultAxisGapAnalyzer struct {
	config Config
}

// NewDefaultAxisGapAnalyzer creates the default coverage analyzer.
func NewDefaultAxisGapAnalyzer(config Config) *DefaultAxisGapAnalyzer {
	return &DefaultAxisGapAnalyzer{config: config}
}

// Analyze implements AxisGapAnalyzer.
func (a *DefaultAxisGapAnalyzer) Analyze(
	prototypes []*shared.Prototype,
	vectors map[string][]SampleVector,
	profiles map[string]*PrototypeProfile,
	pairResults []*PairResult,
	onProgress func(current, total int),
) (*domainOverlap.AxisGapReport, error) {
	referenced := make(map[string]int)
	for _, p := range prototypes {
		if p == nil {
			continue
		}
		axes := make(map[string]bool)
		for axis, w := range p.Weights {
			if w != 0 {
				axes[axis] = true
			}
		}
		parsed := gates.Parse(p.Gates)
		for _, axis := range parsed.AST.Axes() {
			axes[axis] = true
		}
		for axis := range axes {
			referenced[axis]++
		}
	}

	axes := make([]string, 0, len(referenced))
	for axis := range referenced {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	report := &domainOverlap.AxisGapReport{
		Gaps:          make([]domainOverlap.AxisGap, 0),
		AxesExamined:  len(axes),
		CoverageFloor: a.config.AxisGapCoverageFloor,
	}

	total := len(axes)
	for i, axis := range axes {
		coverage := 0.0
		if len(prototypes) > 0 {
			coverage = float64(referenced[axis]) / float64(len(prototypes))
		}
		if coverage < a.config.AxisGapCoverageFloor {
			report.Gaps = append(report.Gaps, domainOverlap.AxisGap{
				Axis:         axis,
				CoverageRate: coverage,
				Prototypes:   referenced[axis],
			})
		}
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	sort.SliceStable(report.Gaps, func(i, j int) bool {
		return report.Gaps[i].CoverageRate < report.Gaps[j].CoverageRate
	})
	return report, nil
}
