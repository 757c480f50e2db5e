package sampling

import (
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/blackms/prototype-overlap-go/internal/domain/gates"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

const defaultGateCacheSize = 256

// DefaultGateChecker evaluates gate specifications against contexts. Parsed
// ASTs are cached by the serialized gate spec, so the hot sampling loop never
// re-parses.
type DefaultGateChecker struct {
	cache *lru.Cache[string, *gates.Node]
}

// NewDefaultGateChecker creates a checker with the given AST cache size
// (defaultGateCacheSize when <= 0).
func NewDefaultGateChecker(cacheSize int) (*DefaultGateChecker, error) {
	if cacheSize <= 0 {
		cacheSize = defaultGateCacheSize
	}
	cache, err := lru.New[string, *gates.Node](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("gate checker: failed to create AST cache: %w", err)
	}
	return &DefaultGateChecker{cache: cache}, nil
}

// CheckAllGatesPass implements shared.GateChecker. Unparseable gate elements
// are tolerated: only the parsed portion of the specification is enforced.
func (c *DefaultGateChecker) CheckAllGatesPass(spec shared.GateSpec, ctx shared.EvalContext) bool {
	node := c.parse(spec)
	return node.Evaluate(ctx)
}

func (c *DefaultGateChecker) parse(spec shared.GateSpec) *gates.Node {
	key, cacheable := cacheKey(spec)
	if cacheable {
		if node, ok := c.cache.Get(key); ok {
			return node
		}
	}

	node := gates.Parse(spec).AST.Normalize()
	if cacheable {
		c.cache.Add(key, node)
	}
	return node
}

func cacheKey(spec shared.GateSpec) (string, bool) {
	if spec == nil {
		return "", false
	}
	raw, err := json.Marshal(spec)
	if err != nil {
		return "", false
	}
	return string(raw), true
}
