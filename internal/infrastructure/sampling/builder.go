package sampling

import (
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// DefaultContextBuilder flattens current state, previous state, and traits
// into one evaluation context. Previous-state axes are exposed under a
// "prev_" prefix; trait axes are overridden by current values on collision.
type DefaultContextBuilder struct{}

// NewDefaultContextBuilder creates the default builder.
func NewDefaultContextBuilder() *DefaultContextBuilder {
	return &DefaultContextBuilder{}
}

// BuildContext implements shared.ContextBuilder.
func (b *DefaultContextBuilder) BuildContext(current, previous, traits shared.Context) shared.EvalContext {
	ctx := make(shared.EvalContext, len(current)+len(previous)+len(traits))
	for axis, value := range traits {
		ctx[axis] = value
	}
	for axis, value := range previous {
		ctx["prev_"+axis] = value
	}
	for axis, value := range current {
		ctx[axis] = value
	}
	return ctx
}
