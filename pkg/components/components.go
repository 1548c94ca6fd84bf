// Package components partitions a graph into its connected components.
//
// A Traversal walks the graph depth-first with an explicit stack, so very
// large components cannot exhaust the goroutine stack. Components are
// produced lazily, one per call to Next.
//
// Complexity:
//
//   - Time:   O(V + E) over the whole traversal.
//   - Memory: O(V) for the visited set and stack.
package components

import (
	"iter"
	"slices"

	"github.com/agentstation/linkage/pkg/graph"
)

// Component is a maximal connected subgraph.
type Component[E any] struct {
	// Nodes holds the member handles in ascending order.
	Nodes []graph.NodeID
	// Edges holds every edge between members, ordered by (From, To).
	Edges []graph.Edge[E]
}

// Len returns the number of member nodes.
func (c *Component[E]) Len() int { return len(c.Nodes) }

// Traversal yields the components of a graph. It is not restartable and
// not safe for concurrent use.
type Traversal[N, E any] struct {
	g       *graph.Graph[N, E]
	visited []bool
	cursor  int
	stack   []graph.NodeID
}

// New creates a traversal over g. Nodes added to g after New are not
// visited.
func New[N, E any](g *graph.Graph[N, E]) *Traversal[N, E] {
	return &Traversal[N, E]{
		g:       g,
		visited: make([]bool, g.Order()),
	}
}

// Next returns the next component, or false once every node was visited.
func (t *Traversal[N, E]) Next() (*Component[E], bool) {
	for t.cursor < len(t.visited) && t.visited[t.cursor] {
		t.cursor++
	}
	if t.cursor >= len(t.visited) {
		return nil, false
	}
	return t.walk(graph.NodeID(t.cursor)), true
}

// All returns the remaining components as a sequence.
func (t *Traversal[N, E]) All() iter.Seq[*Component[E]] {
	return func(yield func(*Component[E]) bool) {
		for {
			c, ok := t.Next()
			if !ok || !yield(c) {
				return
			}
		}
	}
}

// Remaining returns the number of nodes not yet assigned to a component.
func (t *Traversal[N, E]) Remaining() int {
	n := 0
	for _, seen := range t.visited {
		if !seen {
			n++
		}
	}
	return n
}

func (t *Traversal[N, E]) walk(root graph.NodeID) *Component[E] {
	c := &Component[E]{}
	t.visited[root] = true
	t.stack = append(t.stack[:0], root)

	for len(t.stack) > 0 {
		u := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		c.Nodes = append(c.Nodes, u)

		// u is a valid handle, so Neighbors cannot fail.
		nbrs, _ := t.g.Neighbors(u)
		for _, v := range nbrs {
			if u < v {
				label, _ := t.g.Edge(u, v)
				c.Edges = append(c.Edges, graph.Edge[E]{From: u, To: v, Label: label})
			}
			if int(v) < len(t.visited) && !t.visited[v] {
				t.visited[v] = true
				t.stack = append(t.stack, v)
			}
		}
	}

	slices.Sort(c.Nodes)
	slices.SortFunc(c.Edges, func(a, b graph.Edge[E]) int {
		if a.From != b.From {
			return int(a.From - b.From)
		}
		return int(a.To - b.To)
	})
	return c
}
