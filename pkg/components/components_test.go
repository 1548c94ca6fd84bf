package components_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/linkage/pkg/components"
	"github.com/agentstation/linkage/pkg/graph"
)

func build(t *testing.T, n int, edges ...[2]int) *graph.Graph[int, string] {
	t.Helper()
	g := graph.New[int, string]()
	for i := 0; i < n; i++ {
		g.AddNode(i)
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(graph.NodeID(e[0]), graph.NodeID(e[1]), "e"))
	}
	return g
}

func TestTraversalPartitions(t *testing.T) {
	// 0-1-2  3  4-5
	g := build(t, 6, [2]int{0, 1}, [2]int{2, 1}, [2]int{4, 5})
	tr := components.New(g)

	var got [][]graph.NodeID
	edges := 0
	for c := range tr.All() {
		got = append(got, c.Nodes)
		edges += len(c.Edges)
	}

	assert.Equal(t, [][]graph.NodeID{{0, 1, 2}, {3}, {4, 5}}, got)
	assert.Equal(t, g.Size(), edges)
	assert.Equal(t, 0, tr.Remaining())

	_, ok := tr.Next()
	assert.False(t, ok, "traversal is not restartable")
}

func TestTraversalEveryNodeOnce(t *testing.T) {
	// cycle plus chords
	g := build(t, 5, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 0}, [2]int{0, 2})
	tr := components.New(g)

	c, ok := tr.Next()
	require.True(t, ok)
	assert.Equal(t, 5, c.Len())
	assert.Len(t, c.Edges, 6)
	for i := 1; i < len(c.Edges); i++ {
		assert.True(t, c.Edges[i-1].From <= c.Edges[i].From)
	}

	_, ok = tr.Next()
	assert.False(t, ok)
}

func TestTraversalLazy(t *testing.T) {
	g := build(t, 3)
	tr := components.New(g)

	assert.Equal(t, 3, tr.Remaining())
	c, ok := tr.Next()
	require.True(t, ok)
	assert.Equal(t, []graph.NodeID{0}, c.Nodes)
	assert.Empty(t, c.Edges)
	assert.Equal(t, 2, tr.Remaining())
}

func TestTraversalDeepChain(t *testing.T) {
	const n = 100000
	g := graph.New[int, string](graph.WithCapacity(n))
	for i := 0; i < n; i++ {
		g.AddNode(i)
	}
	for i := 1; i < n; i++ {
		require.NoError(t, g.AddEdge(graph.NodeID(i-1), graph.NodeID(i), ""))
	}

	c, ok := components.New(g).Next()
	require.True(t, ok)
	assert.Equal(t, n, c.Len())
}

func TestTraversalEmptyGraph(t *testing.T) {
	_, ok := components.New(graph.New[int, string]()).Next()
	assert.False(t, ok)
}
