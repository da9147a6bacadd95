package network

import (
	"testing"

	"bayesview/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ParentsFollowEdgeOrder(t *testing.T) {
	m, err := Build([][]string{
		{"ex", "gr"},
		{"su", "gr"},
		{"gr", "pa"},
		{"ex", "su"},
	})
	require.NoError(t, err)

	assert.Equal(t, []Variable{"ex", "gr", "su", "pa"}, m.Variables())
	assert.Equal(t, []Variable{"ex", "su"}, m.ParentsOf("gr"))
	assert.Equal(t, []Variable{"gr"}, m.ParentsOf("pa"))
	assert.Empty(t, m.ParentsOf("ex"))
	assert.Empty(t, m.ParentsOf("unknown"))
	assert.Equal(t, []Variable{"gr", "su"}, m.ChildrenOf("ex"))
	assert.Equal(t, 4, m.Len())
}

func TestBuild_ParentsOnlyFromEdges(t *testing.T) {
	edges := [][]string{{"a", "b"}, {"b", "c"}, {"a", "c"}, {"d", "c"}}
	m, err := Build(edges)
	require.NoError(t, err)

	connected := make(map[Edge]bool)
	for _, e := range edges {
		connected[Edge{Parent: Variable(e[0]), Child: Variable(e[1])}] = true
	}
	for _, v := range m.Variables() {
		for _, p := range m.ParentsOf(v) {
			assert.True(t, connected[Edge{Parent: p, Child: v}], "%s -> %s is not an edge", p, v)
		}
	}
}

func TestBuild_DuplicateEdgesCollapse(t *testing.T) {
	m, err := Build([][]string{{"a", "b"}, {"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []Variable{"a"}, m.ParentsOf("b"))
	assert.Len(t, m.Edges(), 1)
}

func TestBuild_Cycles(t *testing.T) {
	tests := []struct {
		name  string
		edges [][]string
	}{
		{"two node cycle", [][]string{{"A", "B"}, {"B", "A"}}},
		{"three node cycle", [][]string{{"A", "B"}, {"B", "C"}, {"C", "A"}}},
		{"self loop", [][]string{{"A", "A"}}},
		{"cycle behind a root", [][]string{{"R", "A"}, {"A", "B"}, {"B", "C"}, {"C", "A"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.edges)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrCyclicGraph)
			assert.True(t, core.IsStructureError(err))
		})
	}
}

func TestBuild_CycleMembersReported(t *testing.T) {
	_, err := Build([][]string{{"R", "A"}, {"A", "B"}, {"B", "A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{A, B}")
}

func TestBuild_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		edges [][]string
	}{
		{"single element", [][]string{{"A"}}},
		{"triple", [][]string{{"A", "B", "C"}}},
		{"blank name", [][]string{{"A", "  "}}},
		{"empty pair", [][]string{{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.edges)
			assert.ErrorIs(t, err, core.ErrMalformedStructure)
		})
	}
}

func TestBuild_Empty(t *testing.T) {
	m, err := Build(nil)
	require.NoError(t, err)
	assert.Zero(t, m.Len())
	assert.Empty(t, m.TopologicalOrder())
}

func TestTopologicalOrderAndDepths(t *testing.T) {
	m, err := Build([][]string{{"c", "d"}, {"a", "b"}, {"b", "c"}, {"a", "d"}})
	require.NoError(t, err)

	order := m.TopologicalOrder()
	pos := make(map[Variable]int)
	for i, v := range order {
		pos[v] = i
	}
	for _, e := range m.Edges() {
		assert.Less(t, pos[e.Parent], pos[e.Child], "%s must precede %s", e.Parent, e.Child)
	}

	depths := m.Depths()
	assert.Equal(t, 0, depths["a"])
	assert.Equal(t, 1, depths["b"])
	assert.Equal(t, 2, depths["c"])
	assert.Equal(t, 3, depths["d"])
}

func TestGraphView(t *testing.T) {
	m, err := Build([][]string{{"a", "b"}})
	require.NoError(t, err)

	a, ok := m.ID("a")
	require.True(t, ok)
	b, ok := m.ID("b")
	require.True(t, ok)

	assert.True(t, m.Graph().HasEdgeFromTo(a, b))
	assert.False(t, m.Graph().HasEdgeFromTo(b, a))

	v, ok := m.VariableOf(b)
	assert.True(t, ok)
	assert.Equal(t, Variable("b"), v)
	_, ok = m.VariableOf(99)
	assert.False(t, ok)
}

func TestHashStable(t *testing.T) {
	m1, err := Build([][]string{{"a", "b"}, {"b", "c"}})
	require.NoError(t, err)
	m2, err := Build([][]string{{"a", "b"}, {"b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, m1.Hash(), m2.Hash())
}
