// Package sampling provides the default Monte Carlo collaborators: a seeded
// random state generator, a context builder, a cached gate checker, and a
// weighted-sum intensity calculator.
package sampling

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// AxisSpec describes the sampling range of one axis.
type AxisSpec struct {
	Name string  `json:"name" yaml:"name"`
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
}

// DefaultAxes returns the standard appraisal axis schema used when no
// explicit schema is configured.
func DefaultAxes() []AxisSpec {
	return []AxisSpec{
		{Name: "valence", Min: -1, Max: 1},
		{Name: "arousal", Min: 0, Max: 1},
		{Name: "threat", Min: 0, Max: 1},
		{Name: "novelty", Min: 0, Max: 1},
		{Name: "control", Min: 0, Max: 1},
		{Name: "goal_congruence", Min: -1, Max: 1},
		{Name: "certainty", Min: 0, Max: 1},
		{Name: "social", Min: 0, Max: 1},
	}
}

// DefaultRandomStateGenerator draws uniform axis values from a configured
// schema. A fixed seed makes runs reproducible.
type DefaultRandomStateGenerator struct {
	mu   sync.Mutex
	axes []AxisSpec
	rng  *rand.Rand
}

// NewDefaultRandomStateGenerator creates a generator over the given axis
// schema (DefaultAxes when nil) with a deterministic seed.
func NewDefaultRandomStateGenerator(axes []AxisSpec, seed int64) *DefaultRandomStateGenerator {
	if len(axes) == 0 {
		axes = DefaultAxes()
	}
	sorted := make([]AxisSpec, len(axes))
	copy(sorted, axes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	return &DefaultRandomStateGenerator{
		axes: sorted,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Generate implements shared.RandomStateGenerator.
func (g *DefaultRandomStateGenerator) Generate() shared.Context {
	g.mu.Lock()
	defer g.mu.Unlock()

	ctx := make(shared.Context, len(g.axes))
	for _, axis := range g.axes {
		ctx[axis.Name] = axis.Min + g.rng.Float64()*(axis.Max-axis.Min)
	}
	return ctx
}
