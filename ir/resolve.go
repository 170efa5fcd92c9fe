package ir

// ConstantValue returns the value of h if it is a Constant node.
func (g *Graph) ConstantValue(h NodeHandle) (float32, bool) {
	if c, ok := g.Nodes[h].Kind.(Constant); ok {
		return c.Value, true
	}
	return 0, false
}

// IsConstant reports whether h is a Constant node with value v.
func (g *Graph) IsConstant(h NodeHandle, v float32) bool {
	c, ok := g.ConstantValue(h)
	return ok && c == v
}

// Lanes returns the number of scalar lanes node h yields: the input count
// for groups, one for everything else.
func (g *Graph) Lanes(h NodeHandle) int {
	if _, ok := g.Nodes[h].Kind.(Group); ok {
		return len(g.Nodes[h].Inputs)
	}
	return 1
}

// IsBoolean reports whether h yields a condition rather than a number.
func (g *Graph) IsBoolean(h NodeHandle) bool {
	if b, ok := g.Nodes[h].Kind.(Binary); ok {
		return b.Op.IsComparison()
	}
	return false
}

// Equivalent reports whether a and b compute the same value: the same
// kinds over equivalent inputs. Relative inputs are equivalent only to
// themselves.
func (g *Graph) Equivalent(a, b NodeHandle) bool {
	return g.equivalent(a, b, 0)
}

const equivalenceDepth = 64

func (g *Graph) equivalent(a, b NodeHandle, depth int) bool {
	if a == b {
		return true
	}
	if depth > equivalenceDepth {
		return false
	}
	na, nb := &g.Nodes[a], &g.Nodes[b]
	if len(na.Inputs) != len(nb.Inputs) || !sameKind(na.Kind, nb.Kind) {
		return false
	}
	for i := range na.Inputs {
		if !g.equivalent(na.Inputs[i], nb.Inputs[i], depth+1) {
			return false
		}
	}
	return true
}

func sameKind(a, b NodeKind) bool {
	switch a := a.(type) {
	case RegisterInput:
		b, ok := b.(RegisterInput)
		if !ok || a.Relative != nil || b.Relative != nil {
			return false
		}
		return a.Key == b.Key && a.SamplerDimension == b.SamplerDimension
	default:
		return a == b
	}
}
