package ir

import "fmt"

// CycleError is returned when a mutation would make the graph cyclic.
// The graph is left unchanged.
type CycleError struct {
	Parent NodeHandle
	Child  NodeHandle
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("ir: linking node %d as input of node %d would create a cycle", e.Child, e.Parent)
}

// HandleError reports a handle outside the arena.
type HandleError struct {
	Handle NodeHandle
	Len    int
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("ir: node handle %d out of range (arena has %d nodes)", e.Handle, e.Len)
}
