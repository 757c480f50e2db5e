package shared

// CloneGateSpec deep-clones a raw gate spec. Gate specs arrive as decoded
// JSON shapes (strings, numbers, maps, slices), so only those kinds need
// handling; unknown kinds are returned as-is.
func CloneGateSpec(spec GateSpec) GateSpec {
	return cloneValue(spec)
}

// ClonePrototype returns a deep copy of a prototype so registry callers can
// hand out results without aliasing their stored state.
func ClonePrototype(p *Prototype) *Prototype {
	if p == nil {
		return nil
	}
	clone := &Prototype{
		ID:    p.ID,
		Type:  p.Type,
		Gates: CloneGateSpec(p.Gates),
	}
	if p.Weights != nil {
		clone.Weights = make(map[string]float64, len(p.Weights))
		for axis, w := range p.Weights {
			clone.Weights[axis] = w
		}
	}
	return clone
}

// CloneContext returns a copy of a context map.
func CloneContext(c map[string]float64) map[string]float64 {
	if c == nil {
		return nil
	}
	clone := make(map[string]float64, len(c))
	for axis, v := range c {
		clone[axis] = v
	}
	return clone
}

func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		clone := make(map[string]interface{}, len(v))
		for key, elem := range v {
			clone[key] = cloneValue(elem)
		}
		return clone
	case []interface{}:
		clone := make([]interface{}, len(v))
		for i, elem := range v {
			clone[i] = cloneValue(elem)
		}
		return clone
	case []string:
		clone := make([]string, len(v))
		copy(clone, v)
		return clone
	default:
		return v
	}
}
