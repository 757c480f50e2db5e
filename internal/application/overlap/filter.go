package overlap

import (
	"fmt"
	"log/slog"

	domainOverlap "github.com/blackms/prototype-overlap-go/internal/domain/overlap"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// FilterProgress reports Stage A progress once per pair processed.
type FilterProgress func(current, total int)

// RouteStats counts how one route performed.
type RouteStats struct {
	Evaluated int `json:"evaluated"`
	Admitted  int `json:"admitted"`
}

// FilterStats aggregates Stage A statistics.
type FilterStats struct {
	PrototypesConsidered int                                 `json:"prototypesConsidered"`
	PrototypesUsable     int                                 `json:"prototypesUsable"`
	PairsEvaluated       int                                 `json:"pairsEvaluated"`
	RouteStats           map[domainOverlap.Route]*RouteStats `json:"routeStats,omitempty"`
}

// FilterResult is the shortlist produced by candidate filtering.
type FilterResult struct {
	Candidates []*domainOverlap.CandidatePair `json:"candidates"`
	Stats      FilterStats                    `json:"stats"`
}

// PairFilter is the contract for the optional Route B/C filters: they take
// the pairs Route A rejected and return the subset they re-admit, in the
// same candidate shape.
type PairFilter interface {
	FilterPairs(pairs []*domainOverlap.CandidatePair) (*FilterResult, error)
}

// CandidatePairFilter runs Stage A: cheap geometric similarity over weight
// vectors shortlists candidate pairs out of the O(n^2) pair space, with
// optional Route B/C re-admission.
type CandidatePairFilter struct {
	config Config
	routeB PairFilter
	routeC PairFilter
	logger *slog.Logger
}

// NewCandidatePairFilter creates a Stage A filter. The route filters are
// optional; nil filters are skipped without error.
func NewCandidatePairFilter(config Config, routeB, routeC PairFilter, logger *slog.Logger) (*CandidatePairFilter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("candidate pair filter: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CandidatePairFilter{config: config, routeB: routeB, routeC: routeC, logger: logger}, nil
}

// FilterCandidates shortlists unordered prototype pairs. Prototypes without
// a usable non-empty weight map are discarded first; with fewer than two
// remaining the result is empty and no pair work happens.
func (f *CandidatePairFilter) FilterCandidates(prototypes []*shared.Prototype, onProgress FilterProgress) (*FilterResult, error) {
	result := &FilterResult{
		Candidates: make([]*domainOverlap.CandidatePair, 0),
		Stats: FilterStats{
			PrototypesConsidered: len(prototypes),
		},
	}
	if f.config.EnableMultiRoute {
		result.Stats.RouteStats = map[domainOverlap.Route]*RouteStats{
			domainOverlap.RouteA: {},
			domainOverlap.RouteB: {},
			domainOverlap.RouteC: {},
		}
	}

	usable := make([]*shared.Prototype, 0, len(prototypes))
	for _, p := range prototypes {
		if p.HasUsableWeights() {
			usable = append(usable, p)
			continue
		}
		f.logger.Warn("discarding prototype without usable weights", "prototype", prototypeID(p))
	}
	result.Stats.PrototypesUsable = len(usable)

	if len(usable) < 2 {
		f.logger.Info("fewer than two usable prototypes, skipping pair filtering",
			"usable", len(usable))
		return result, nil
	}

	totalPairs := len(usable) * (len(usable) - 1) / 2
	admitted := make([]*domainOverlap.CandidatePair, 0)
	rejected := make([]*domainOverlap.CandidatePair, 0)

	current := 0
	for i := 0; i < len(usable); i++ {
		for j := i + 1; j < len(usable); j++ {
			pair := f.buildPair(usable[i], usable[j])
			if f.admitsRouteA(pair.Metrics) {
				pair.SelectedBy = domainOverlap.RouteA
				admitted = append(admitted, pair)
			} else {
				rejected = append(rejected, pair)
			}
			current++
			if onProgress != nil {
				onProgress(current, totalPairs)
			}
		}
	}
	result.Stats.PairsEvaluated = totalPairs
	if result.Stats.RouteStats != nil {
		result.Stats.RouteStats[domainOverlap.RouteA].Evaluated = totalPairs
		result.Stats.RouteStats[domainOverlap.RouteA].Admitted = len(admitted)
	}

	merged := make(map[string]*domainOverlap.CandidatePair, len(admitted))
	order := make([]string, 0, len(admitted))
	for _, pair := range admitted {
		key := pair.Key()
		if _, ok := merged[key]; !ok {
			order = append(order, key)
		}
		merged[key] = pair
	}

	if f.config.EnableMultiRoute {
		// Later routes only see pairs no higher-priority route admitted, so
		// a Route C admission can never overwrite a Route B one.
		remaining := rejected
		for _, route := range []struct {
			filter PairFilter
			tag    domainOverlap.Route
		}{
			{f.routeB, domainOverlap.RouteB},
			{f.routeC, domainOverlap.RouteC},
		} {
			if route.filter == nil {
				continue
			}
			readmitted, err := route.filter.FilterPairs(remaining)
			if err != nil {
				return nil, fmt.Errorf("route %s filter: %w", route.tag, err)
			}
			if result.Stats.RouteStats != nil {
				result.Stats.RouteStats[route.tag].Evaluated = len(remaining)
				result.Stats.RouteStats[route.tag].Admitted = len(readmitted.Candidates)
			}
			for _, pair := range readmitted.Candidates {
				pair.SelectedBy = route.tag
				key := pair.Key()
				if _, ok := merged[key]; !ok {
					order = append(order, key)
				}
				merged[key] = pair
			}
			next := make([]*domainOverlap.CandidatePair, 0, len(remaining))
			for _, pair := range remaining {
				if _, ok := merged[pair.Key()]; !ok {
					next = append(next, pair)
				}
			}
			remaining = next
		}
	}

	for _, key := range order {
		result.Candidates = append(result.Candidates, merged[key])
	}
	return result, nil
}

// buildPair computes the geometric metrics for one unordered pair.
func (f *CandidatePairFilter) buildPair(a, b *shared.Prototype) *domainOverlap.CandidatePair {
	activeA := domainOverlap.ActiveAxes(a.Weights, f.config.ActiveAxisEpsilon)
	activeB := domainOverlap.ActiveAxes(b.Weights, f.config.ActiveAxisEpsilon)
	activeEither := domainOverlap.UnionAxes(activeA, activeB)

	return &domainOverlap.CandidatePair{
		PrototypeA: a,
		PrototypeB: b,
		Metrics: domainOverlap.CandidateMetrics{
			ActiveAxisOverlap:      domainOverlap.Jaccard(activeA, activeB, f.config.JaccardEmptySetValue),
			SignAgreement:          domainOverlap.SignAgreement(a.Weights, b.Weights, activeEither, f.config.SoftSignThreshold),
			WeightCosineSimilarity: domainOverlap.WeightCosineSimilarity(a.Weights, b.Weights),
		},
	}
}

func (f *CandidatePairFilter) admitsRouteA(m domainOverlap.CandidateMetrics) bool {
	return m.ActiveAxisOverlap >= f.config.CandidateMinActiveAxisOverlap &&
		m.SignAgreement >= f.config.CandidateMinSignAgreement &&
		m.WeightCosineSimilarity >= f.config.CandidateMinCosineSimilarity
}

func prototypeID(p *shared.Prototype) string {
	if p == nil {
		return "<nil>"
	}
	return p.ID
}
