package ir

import "fmt"

// AddInput appends child to the inputs of parent. It returns a *CycleError
// and leaves the graph unchanged if parent is reachable from child.
func (g *Graph) AddInput(parent, child NodeHandle) error {
	if err := g.check(parent, child); err != nil {
		return err
	}
	if g.wouldCycle(parent, child) {
		return &CycleError{Parent: parent, Child: child}
	}
	g.link(parent, child)
	return nil
}

// SetInput replaces input slot i of parent with child.
func (g *Graph) SetInput(parent NodeHandle, i int, child NodeHandle) error {
	if err := g.check(parent, child); err != nil {
		return err
	}
	if i < 0 || i >= len(g.Nodes[parent].Inputs) {
		return fmt.Errorf("ir: node %d has no input slot %d", parent, i)
	}
	old := g.Nodes[parent].Inputs[i]
	if old == child {
		return nil
	}
	if g.wouldCycle(parent, child) {
		return &CycleError{Parent: parent, Child: child}
	}
	g.unlinkUser(old, parent)
	g.Nodes[parent].Inputs[i] = child
	g.Nodes[child].users = append(g.Nodes[child].users, parent)
	return nil
}

// Replace redirects every consumer of node to with. After a successful
// call node has no users and no longer counts as a user of its own
// inputs, though it keeps them; it must not be linked again. If any
// consumer is reachable from with the call fails with a *CycleError and
// nothing is changed.
func (g *Graph) Replace(node, with NodeHandle) error {
	if err := g.check(node, with); err != nil {
		return err
	}
	if node == with {
		return nil
	}
	users := g.Users(node)
	for _, u := range users {
		if g.wouldCycle(u, with) {
			return &CycleError{Parent: u, Child: with}
		}
	}
	for _, u := range users {
		inputs := g.Nodes[u].Inputs
		for i, in := range inputs {
			if in == node {
				inputs[i] = with
				g.Nodes[with].users = append(g.Nodes[with].users, u)
			}
		}
	}
	for _, in := range g.Nodes[node].Inputs {
		g.unlinkUser(in, node)
	}
	g.Nodes[node].users = nil
	return nil
}

func (g *Graph) check(handles ...NodeHandle) error {
	for _, h := range handles {
		if !g.Valid(h) {
			return &HandleError{Handle: h, Len: len(g.Nodes)}
		}
	}
	return nil
}

// wouldCycle reports whether an edge parent -> child would close a cycle,
// i.e. whether parent is reachable from child along inputs.
func (g *Graph) wouldCycle(parent, child NodeHandle) bool {
	if parent == child {
		return true
	}
	// Nothing consumes parent, so nothing below child can lead back to it.
	if len(g.Nodes[parent].users) == 0 {
		return false
	}
	return g.Reaches(child, parent)
}

// Reaches reports whether to is reachable from from along input edges.
func (g *Graph) Reaches(from, to NodeHandle) bool {
	if from == to {
		return true
	}
	visited := make(map[NodeHandle]struct{})
	stack := []NodeHandle{from}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[h]; ok {
			continue
		}
		visited[h] = struct{}{}
		for _, in := range g.Nodes[h].Inputs {
			if in == to {
				return true
			}
			stack = append(stack, in)
		}
	}
	return false
}
