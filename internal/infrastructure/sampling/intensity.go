package sampling

import (
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// DefaultIntensityCalculator computes intensity as the weighted sum of axis
// values. Axes missing from the context contribute zero.
type DefaultIntensityCalculator struct{}

// NewDefaultIntensityCalculator creates the default calculator.
func NewDefaultIntensityCalculator() *DefaultIntensityCalculator {
	return &DefaultIntensityCalculator{}
}

// ComputeIntensity implements shared.IntensityCalculator.
func (c *DefaultIntensityCalculator) ComputeIntensity(weights map[string]float64, ctx shared.EvalContext) float64 {
	total := 0.0
	for axis, weight := range weights {
		if value, ok := ctx[axis]; ok {
			total += weight * value
		}
	}
	return total
}
