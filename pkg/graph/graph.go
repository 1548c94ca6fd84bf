// Package graph provides a generic undirected graph whose nodes are
// addressed by integer handles into a flat table and whose edges carry a
// label.
//
// Invariants:
//   - no self-loops (ErrLoopNotAllowed)
//   - at most one edge per node pair; adding it again overwrites the label
//
// All methods are safe for concurrent use.
//
// Errors:
//
//	ErrNodeNotFound   - a handle does not name a node of this graph.
//	ErrLoopNotAllowed - both endpoints of an edge are the same node.
package graph

import (
	"errors"
	"iter"
	"maps"
	"slices"
	"sync"
)

// Sentinel errors for graph operations.
var (
	// ErrNodeNotFound indicates an operation referenced a non-existent node.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrLoopNotAllowed indicates a self-loop was attempted.
	ErrLoopNotAllowed = errors.New("graph: self-loop not allowed")
)

// NodeID is a handle to a node. Handles are dense, starting at zero, in
// insertion order.
type NodeID int

// Edge is an undirected edge. From is always the smaller handle.
type Edge[E any] struct {
	From  NodeID
	To    NodeID
	Label E
}

// Option configures a Graph.
type Option func(*config)

type config struct {
	capacity int
}

// WithCapacity preallocates room for n nodes.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// Graph is an undirected graph with node payloads N and edge labels E.
type Graph[N, E any] struct {
	mu    sync.RWMutex
	nodes []N
	adj   []map[NodeID]E
	size  int
}

// New creates an empty graph.
func New[N, E any](opts ...Option) *Graph[N, E] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Graph[N, E]{
		nodes: make([]N, 0, cfg.capacity),
		adj:   make([]map[NodeID]E, 0, cfg.capacity),
	}
}

// AddNode appends a node and returns its handle.
func (g *Graph[N, E]) AddNode(n N) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = append(g.nodes, n)
	g.adj = append(g.adj, nil)
	return NodeID(len(g.nodes) - 1)
}

// Node returns the payload of id.
func (g *Graph[N, E]) Node(id NodeID) (N, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.has(id) {
		var zero N
		return zero, ErrNodeNotFound
	}
	return g.nodes[id], nil
}

// HasNode reports whether id names a node.
func (g *Graph[N, E]) HasNode(id NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.has(id)
}

// Order returns the number of nodes.
func (g *Graph[N, E]) Order() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Size returns the number of edges.
func (g *Graph[N, E]) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.size
}

// AddEdge connects a and b with label. If the edge already exists its label
// is replaced.
func (g *Graph[N, E]) AddEdge(a, b NodeID, label E) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.has(a) || !g.has(b) {
		return ErrNodeNotFound
	}
	if a == b {
		return ErrLoopNotAllowed
	}
	if g.adj[a] == nil {
		g.adj[a] = make(map[NodeID]E)
	}
	if g.adj[b] == nil {
		g.adj[b] = make(map[NodeID]E)
	}
	if _, ok := g.adj[a][b]; !ok {
		g.size++
	}
	g.adj[a][b] = label
	g.adj[b][a] = label
	return nil
}

// Edge returns the label of the edge between a and b.
func (g *Graph[N, E]) Edge(a, b NodeID) (E, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.has(a) {
		var zero E
		return zero, false
	}
	label, ok := g.adj[a][b]
	return label, ok
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph[N, E]) HasEdge(a, b NodeID) bool {
	_, ok := g.Edge(a, b)
	return ok
}

// Neighbors returns the nodes adjacent to id in handle order.
func (g *Graph[N, E]) Neighbors(id NodeID) ([]NodeID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.has(id) {
		return nil, ErrNodeNotFound
	}
	return slices.Sorted(maps.Keys(g.adj[id])), nil
}

// Degree returns the number of edges incident to id, or 0 if id is unknown.
func (g *Graph[N, E]) Degree(id NodeID) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.has(id) {
		return 0
	}
	return len(g.adj[id])
}

// Nodes yields every node in handle order.
func (g *Graph[N, E]) Nodes() iter.Seq2[NodeID, N] {
	return func(yield func(NodeID, N) bool) {
		g.mu.RLock()
		nodes := slices.Clone(g.nodes)
		g.mu.RUnlock()
		for i, n := range nodes {
			if !yield(NodeID(i), n) {
				return
			}
		}
	}
}

// Edges returns every edge once, ordered by (From, To).
func (g *Graph[N, E]) Edges() []Edge[E] {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge[E], 0, g.size)
	for from := range g.adj {
		for _, to := range slices.Sorted(maps.Keys(g.adj[from])) {
			if NodeID(from) < to {
				out = append(out, Edge[E]{From: NodeID(from), To: to, Label: g.adj[from][to]})
			}
		}
	}
	return out
}

func (g *Graph[N, E]) has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}
