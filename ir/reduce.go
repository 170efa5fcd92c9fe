package ir

import "errors"

// reduceDepth bounds the recursion of Reduce. Deeper subtrees are left as is.
const reduceDepth = 1024

// Reduce simplifies the subtree rooted at h bottom-up and returns the
// handle that now computes its value. It cancels double negation, folds
// negated constants and, when expandMultiplyAdd is set, rewrites mad into
// an add of a multiply. Reduced inputs are written back into their slots.
//
// A slot whose reduced input would close a cycle keeps its old, equivalent
// input; the returned handle is still usable and the error lists every
// rejected slot.
func (g *Graph) Reduce(h NodeHandle, expandMultiplyAdd bool) (NodeHandle, error) {
	r := reducer{g: g, expand: expandMultiplyAdd, memo: make(map[NodeHandle]NodeHandle)}
	out := r.reduce(h, 0)
	return out, errors.Join(r.rejected...)
}

type reducer struct {
	g        *Graph
	expand   bool
	memo     map[NodeHandle]NodeHandle
	rejected []error
}

func (r *reducer) reduce(h NodeHandle, depth int) NodeHandle {
	if out, ok := r.memo[h]; ok {
		return out
	}
	if depth >= reduceDepth {
		return h
	}
	// Mark before descending so a malformed cyclic graph terminates.
	r.memo[h] = h

	g := r.g
	for i := range g.Nodes[h].Inputs {
		in := g.Nodes[h].Inputs[i]
		out := r.reduce(in, depth+1)
		if out != in {
			if err := g.SetInput(h, i, out); err != nil {
				r.rejected = append(r.rejected, err)
			}
		}
	}

	out := r.local(h)
	r.memo[h] = out
	return out
}

func (r *reducer) local(h NodeHandle) NodeHandle {
	g := r.g
	switch k := g.Nodes[h].Kind.(type) {
	case Unary:
		if k.Op != UnaryNegate {
			return h
		}
		x := g.Nodes[h].Inputs[0]
		if u, ok := g.Nodes[x].Kind.(Unary); ok && u.Op == UnaryNegate {
			return g.Nodes[x].Inputs[0]
		}
		if v, ok := g.ConstantValue(x); ok {
			return g.Constant(-v)
		}
	case Ternary:
		if k.Op == TernaryMultiplyAdd && r.expand {
			in := g.Nodes[h].Inputs
			mul := g.Binary(BinaryMultiply, in[0], in[1])
			return g.Binary(BinaryAdd, mul, in[2])
		}
	}
	return h
}
