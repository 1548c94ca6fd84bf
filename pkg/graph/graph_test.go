package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/linkage/pkg/graph"
)

func TestAddNode(t *testing.T) {
	g := graph.New[string, string](graph.WithCapacity(4))

	a := g.AddNode("a")
	b := g.AddNode("b")
	assert.Equal(t, graph.NodeID(0), a)
	assert.Equal(t, graph.NodeID(1), b)
	assert.Equal(t, 2, g.Order())

	n, err := g.Node(b)
	require.NoError(t, err)
	assert.Equal(t, "b", n)

	_, err = g.Node(7)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
	assert.False(t, g.HasNode(-1))
}

func TestAddEdge(t *testing.T) {
	g := graph.New[string, string]()
	a, b, c := g.AddNode("a"), g.AddNode("b"), g.AddNode("c")

	require.NoError(t, g.AddEdge(a, b, "first"))
	require.NoError(t, g.AddEdge(b, a, "second"))
	assert.Equal(t, 1, g.Size(), "re-adding an edge must not create a multi-edge")

	label, ok := g.Edge(a, b)
	require.True(t, ok)
	assert.Equal(t, "second", label)
	label, ok = g.Edge(b, a)
	require.True(t, ok)
	assert.Equal(t, "second", label)

	assert.ErrorIs(t, g.AddEdge(a, a, "loop"), graph.ErrLoopNotAllowed)
	assert.ErrorIs(t, g.AddEdge(a, 9, "x"), graph.ErrNodeNotFound)
	assert.False(t, g.HasEdge(a, c))
	assert.False(t, g.HasEdge(9, a))
}

func TestNeighborsAndEdges(t *testing.T) {
	g := graph.New[string, int]()
	a, b, c, d := g.AddNode("a"), g.AddNode("b"), g.AddNode("c"), g.AddNode("d")
	require.NoError(t, g.AddEdge(c, a, 1))
	require.NoError(t, g.AddEdge(a, b, 2))

	nbrs, err := g.Neighbors(a)
	require.NoError(t, err)
	assert.Equal(t, []graph.NodeID{b, c}, nbrs)

	nbrs, err = g.Neighbors(d)
	require.NoError(t, err)
	assert.Empty(t, nbrs)
	assert.Equal(t, 0, g.Degree(d))
	assert.Equal(t, 2, g.Degree(a))

	_, err = g.Neighbors(42)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)

	assert.Equal(t, []graph.Edge[int]{
		{From: a, To: b, Label: 2},
		{From: a, To: c, Label: 1},
	}, g.Edges())

	var names []string
	for _, n := range g.Nodes() {
		names = append(names, n)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
}
