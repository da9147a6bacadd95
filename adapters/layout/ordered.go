package layout

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
)

// orderedGraph yields nodes sorted by ID so force accumulation happens in the
// same order on every call
type orderedGraph struct {
	graph.Directed
}

func (g orderedGraph) Nodes() graph.Nodes {
	return sortedNodes(g.Directed.Nodes())
}

func (g orderedGraph) From(id int64) graph.Nodes {
	return sortedNodes(g.Directed.From(id))
}

func sortedNodes(it graph.Nodes) graph.Nodes {
	nodes := graph.NodesOf(it)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	return iterator.NewOrderedNodes(nodes)
}
