package flow

import (
	"fmt"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
)

// ChainGraph accumulates the flow_name → flow_name edges implied by the
// dependency chain the runner is currently unwinding, and rejects a new
// edge that would close a cycle. Recursively invoking the Flow Runner for
// each declared dependency has no built-in cycle guard otherwise; a flow
// depending (directly or transitively) on itself would recurse until the
// stack overflows.
type ChainGraph struct {
	g *core.Graph
}

// NewChainGraph returns an empty dependency graph.
func NewChainGraph() *ChainGraph {
	return &ChainGraph{g: core.NewGraph(true, false)}
}

// DependencyCycleError reports a flow dependency chain that closes a loop.
type DependencyCycleError struct {
	Cycle []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %v", e.Cycle)
}

// AddEdge records that parent depends on child. Returns
// *DependencyCycleError if this edge closes a cycle; the edge is still
// added to the graph in that case so the caller can report the full cycle,
// but the runner must not proceed with the recursive launch.
func (c *ChainGraph) AddEdge(parent, child string) error {
	c.ensureVertex(parent)
	c.ensureVertex(child)
	c.g.AddEdge(parent, child, 0)

	hasCycle, cycles, err := dfs.DetectCycles(c.g)
	if err != nil {
		return fmt.Errorf("dependency cycle check: %w", err)
	}
	if hasCycle {
		return &DependencyCycleError{Cycle: cycles[0]}
	}
	return nil
}

func (c *ChainGraph) ensureVertex(id string) {
	for _, v := range c.g.Vertices() {
		if v == id {
			return
		}
	}
	c.g.AddVertex(&core.Vertex{ID: id})
}
