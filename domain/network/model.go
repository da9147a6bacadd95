// Package network holds the directed acyclic structure that every other
// component builds on: variables, parent edges and their gonum graph view.
package network

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bayesview/domain/core"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Variable is a node of the structure graph, identified by its name
type Variable string

func (v Variable) String() string { return string(v) }

// Edge is a directed parent -> child relation
type Edge struct {
	Parent Variable `json:"parent" yaml:"parent"`
	Child  Variable `json:"child" yaml:"child"`
}

// Model is an immutable DAG of variables. Variables keep first-seen order and
// parents keep edge insertion order.
type Model struct {
	variables []Variable
	ids       map[Variable]int64
	parents   map[Variable][]Variable
	children  map[Variable][]Variable
	edges     []Edge
	order     []Variable
	graph     *simple.DirectedGraph
}

// Build constructs a Model from (parent, child) name pairs
func Build(edgeList [][]string) (*Model, error) {
	edges := make([]Edge, 0, len(edgeList))
	for i, pair := range edgeList {
		if len(pair) != 2 {
			return nil, core.NewMalformedStructureError(fmt.Sprintf("edge %d has %d elements, want 2", i, len(pair)))
		}
		if strings.TrimSpace(pair[0]) == "" || strings.TrimSpace(pair[1]) == "" {
			return nil, core.NewMalformedStructureError(fmt.Sprintf("edge %d has a blank variable name", i))
		}
		edges = append(edges, Edge{Parent: Variable(pair[0]), Child: Variable(pair[1])})
	}
	return FromEdges(edges)
}

// FromEdges constructs a Model from typed edges. Repeated edges are kept once.
func FromEdges(edges []Edge) (*Model, error) {
	m := &Model{
		ids:      make(map[Variable]int64),
		parents:  make(map[Variable][]Variable),
		children: make(map[Variable][]Variable),
		graph:    simple.NewDirectedGraph(),
	}

	seen := make(map[Edge]bool, len(edges))
	for _, e := range edges {
		if e.Parent == "" || e.Child == "" {
			return nil, core.NewMalformedStructureError("edge with an empty variable name")
		}
		if e.Parent == e.Child {
			return nil, fmt.Errorf("%w: self-loop on %s", core.ErrCyclicGraph, e.Parent)
		}
		from := m.addVariable(e.Parent)
		to := m.addVariable(e.Child)
		if seen[e] {
			continue
		}
		seen[e] = true

		m.edges = append(m.edges, e)
		m.parents[e.Child] = append(m.parents[e.Child], e.Parent)
		m.children[e.Parent] = append(m.children[e.Parent], e.Child)
		m.graph.SetEdge(m.graph.NewEdge(simple.Node(from), simple.Node(to)))
	}

	sorted, err := topo.SortStabilized(m.graph, byID)
	if err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) {
			return nil, fmt.Errorf("%w: %s", core.ErrCyclicGraph, m.describeCycles(cycles))
		}
		return nil, fmt.Errorf("%w: %v", core.ErrCyclicGraph, err)
	}

	m.order = make([]Variable, len(sorted))
	for i, n := range sorted {
		m.order[i] = m.variables[n.ID()]
	}
	return m, nil
}

func (m *Model) addVariable(v Variable) int64 {
	if id, ok := m.ids[v]; ok {
		return id
	}
	id := int64(len(m.variables))
	m.ids[v] = id
	m.variables = append(m.variables, v)
	m.graph.AddNode(simple.Node(id))
	return id
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}

func (m *Model) describeCycles(cycles topo.Unorderable) string {
	parts := make([]string, 0, len(cycles))
	for _, component := range cycles {
		nodes := append([]graph.Node(nil), component...)
		byID(nodes)
		names := make([]string, len(nodes))
		for i, n := range nodes {
			names[i] = string(m.variables[n.ID()])
		}
		parts = append(parts, "{"+strings.Join(names, ", ")+"}")
	}
	return strings.Join(parts, " ")
}

// ParentsOf returns v's parents in edge insertion order
func (m *Model) ParentsOf(v Variable) []Variable {
	return append([]Variable(nil), m.parents[v]...)
}

// ChildrenOf returns v's children in edge insertion order
func (m *Model) ChildrenOf(v Variable) []Variable {
	return append([]Variable(nil), m.children[v]...)
}

// Variables returns all variables in first-seen order
func (m *Model) Variables() []Variable {
	return append([]Variable(nil), m.variables...)
}

// Edges returns the distinct edges in insertion order
func (m *Model) Edges() []Edge {
	return append([]Edge(nil), m.edges...)
}

// TopologicalOrder lists parents before children; ties follow first-seen order
func (m *Model) TopologicalOrder() []Variable {
	return append([]Variable(nil), m.order...)
}

// Has reports whether v is part of the model
func (m *Model) Has(v Variable) bool {
	_, ok := m.ids[v]
	return ok
}

// Len returns the number of variables
func (m *Model) Len() int { return len(m.variables) }

// ID returns the gonum node ID of v
func (m *Model) ID(v Variable) (int64, bool) {
	id, ok := m.ids[v]
	return id, ok
}

// VariableOf maps a gonum node ID back to its variable
func (m *Model) VariableOf(id int64) (Variable, bool) {
	if id < 0 || id >= int64(len(m.variables)) {
		return "", false
	}
	return m.variables[id], true
}

// Graph exposes the structure as a read-only gonum directed graph
func (m *Model) Graph() graph.Directed {
	return m.graph
}

// Depths returns the longest-path distance of every variable from a root
func (m *Model) Depths() map[Variable]int {
	depth := make(map[Variable]int, len(m.variables))
	for _, v := range m.order {
		d := 0
		for _, p := range m.parents[v] {
			if depth[p]+1 > d {
				d = depth[p] + 1
			}
		}
		depth[v] = d
	}
	return depth
}

// Hash fingerprints the edge list
func (m *Model) Hash() core.StructureHash {
	pairs := make([][2]string, len(m.edges))
	for i, e := range m.edges {
		pairs[i] = [2]string{string(e.Parent), string(e.Child)}
	}
	return core.ComputeStructureHash(pairs)
}
