package ir

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/gogpu/dxdec/shader"
)

// NodeHandle addresses a node in a Graph.
type NodeHandle uint32

// Program is a lifted shader program.
type Program struct {
	Graph *Graph

	// Body is the ordered statement list. Straight-line programs hold clip
	// statements followed by one assignment per live output lane.
	Body Block

	// Outputs lists the output lanes written by the program, sorted.
	Outputs []shader.RegisterComponentKey

	// Structured is set when the program contains flow control. Register
	// lanes are then assigned as variables instead of being inlined.
	Structured bool
}

// Node is one scalar value in the graph.
type Node struct {
	Kind   NodeKind
	Inputs []NodeHandle

	// users holds one entry per input slot that references this node.
	users []NodeHandle
}

// Graph is an arena of nodes.
type Graph struct {
	Nodes []Node

	constants map[uint32]NodeHandle
	inputs    map[inputKey]NodeHandle
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make([]Node, 0, 64)}
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// Valid reports whether h addresses a node of the arena.
func (g *Graph) Valid(h NodeHandle) bool {
	return int(h) < len(g.Nodes)
}

// Kind returns the kind of node h.
func (g *Graph) Kind(h NodeHandle) NodeKind {
	return g.Nodes[h].Kind
}

// Inputs returns the inputs of node h. The slice aliases the arena.
func (g *Graph) Inputs(h NodeHandle) []NodeHandle {
	return g.Nodes[h].Inputs
}

// Input returns input i of node h.
func (g *Graph) Input(h NodeHandle, i int) NodeHandle {
	return g.Nodes[h].Inputs[i]
}

// Users returns the distinct consumers of node h in first-use order.
func (g *Graph) Users(h NodeHandle) []NodeHandle {
	users := g.Nodes[h].users
	out := make([]NodeHandle, 0, len(users))
	for _, u := range users {
		seen := false
		for _, o := range out {
			if o == u {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, u)
		}
	}
	return out
}

// UserCount returns the number of input slots that reference node h.
func (g *Graph) UserCount(h NodeHandle) int {
	return len(g.Nodes[h].users)
}

// Add appends a node with the given inputs and returns its handle.
// A fresh node has no users, so adding it can never close a cycle.
func (g *Graph) Add(kind NodeKind, inputs ...NodeHandle) NodeHandle {
	h, err := safecast.Conv[uint32](len(g.Nodes))
	if err != nil {
		panic(fmt.Sprintf("ir: node arena overflow: %v", err))
	}
	handle := NodeHandle(h)
	node := Node{Kind: kind}
	if len(inputs) > 0 {
		node.Inputs = make([]NodeHandle, 0, len(inputs))
	}
	g.Nodes = append(g.Nodes, node)
	for _, in := range inputs {
		g.link(handle, in)
	}
	return handle
}

func (g *Graph) link(parent, child NodeHandle) {
	g.Nodes[parent].Inputs = append(g.Nodes[parent].Inputs, child)
	g.Nodes[child].users = append(g.Nodes[child].users, parent)
}

func (g *Graph) unlinkUser(child, parent NodeHandle) {
	users := g.Nodes[child].users
	for i, u := range users {
		if u == parent {
			g.Nodes[child].users = append(users[:i], users[i+1:]...)
			return
		}
	}
}

// Group appends a Group node over the given lanes.
func (g *Graph) Group(lanes ...NodeHandle) NodeHandle {
	return g.Add(Group{}, lanes...)
}

// Unary appends a unary node.
func (g *Graph) Unary(op UnaryOp, x NodeHandle) NodeHandle {
	return g.Add(Unary{Op: op}, x)
}

// Binary appends a binary node.
func (g *Graph) Binary(op BinaryOp, a, b NodeHandle) NodeHandle {
	return g.Add(Binary{Op: op}, a, b)
}

// Ternary appends a ternary node.
func (g *Graph) Ternary(op TernaryOp, a, b, c NodeHandle) NodeHandle {
	return g.Add(Ternary{Op: op}, a, b, c)
}

// Dot appends a dot product of two groups.
func (g *Graph) Dot(a, b NodeHandle) NodeHandle {
	return g.Add(DotProduct{}, a, b)
}
