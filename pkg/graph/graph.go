package graph

import (
	"cmp"
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [Graph.AddEdge] when either endpoint
	// does not exist in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrSelfLoop is returned by [Graph.AddEdge] when both endpoints are the
	// same node. Self loops carry no co-connection information.
	ErrSelfLoop = errors.New("self loop")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil after AddNode or New.
type Metadata map[string]any

// Node is a vertex of the relationship graph. ID doubles as the label.
type Node struct {
	ID   string
	Meta Metadata
}

// Edge is an undirected connection. Edges returned by the graph are
// normalized so that A < B.
type Edge struct {
	A, B string
}

// NewEdge returns the normalized edge between a and b.
func NewEdge(a, b string) Edge {
	if b < a {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Graph is an undirected simple graph keyed by string IDs.
//
// The zero value is not usable - use New to create a valid Graph instance.
type Graph struct {
	nodes map[string]*Node
	adj   map[string]map[string]struct{}
	edges int
	meta  Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes: make(map[string]*Node),
		adj:   make(map[string]map[string]struct{}),
		meta:  meta,
	}
}

// Meta returns the graph-level metadata map. It is never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node. Returns ErrInvalidNodeID for an empty ID or
// ErrDuplicateNodeID if the ID is already present.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	g.nodes[n.ID] = &n
	g.adj[n.ID] = make(map[string]struct{})
	return nil
}

// AddEdge connects a and b. Adding an existing edge is a no-op.
// Returns ErrSelfLoop when a == b and ErrUnknownNode when either endpoint
// is missing.
func (g *Graph) AddEdge(a, b string) error {
	if a == b {
		return ErrSelfLoop
	}
	if _, ok := g.nodes[a]; !ok {
		return ErrUnknownNode
	}
	if _, ok := g.nodes[b]; !ok {
		return ErrUnknownNode
	}
	if _, exists := g.adj[a][b]; exists {
		return nil
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
	g.edges++
	return nil
}

// HasEdge reports whether a and b are connected.
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.adj[a][b]
	return ok
}

// RemoveNode deletes the node and all incident edges. Unknown IDs are ignored.
func (g *Graph) RemoveNode(id string) {
	nbrs, ok := g.adj[id]
	if !ok {
		return
	}
	for n := range nbrs {
		delete(g.adj[n], id)
		g.edges--
	}
	delete(g.adj, id)
	delete(g.nodes, id)
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all node IDs in ascending order.
func (g *Graph) NodeIDs() []string {
	return slices.Sorted(maps.Keys(g.nodes))
}

// Nodes returns all nodes sorted by ID. The pointers refer to the graph's
// own nodes, so metadata changes are visible to the graph.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, id := range g.NodeIDs() {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Neighbors returns the IDs adjacent to id in ascending order.
func (g *Graph) Neighbors(id string) []string {
	return slices.Sorted(maps.Keys(g.adj[id]))
}

// Degree returns the number of edges incident to id, or 0 if unknown.
func (g *Graph) Degree(id string) int { return len(g.adj[id]) }

// Edges returns all edges, normalized and sorted.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for a, nbrs := range g.adj {
		for b := range nbrs {
			if a < b {
				out = append(out, Edge{A: a, B: b})
			}
		}
	}
	slices.SortFunc(out, func(x, y Edge) int {
		return cmp.Or(cmp.Compare(x.A, y.A), cmp.Compare(x.B, y.B))
	})
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return g.edges }

// Clone returns a deep copy of the structure. Node metadata maps are
// copied shallowly.
func (g *Graph) Clone() *Graph {
	out := New(maps.Clone(g.meta))
	for _, n := range g.nodes {
		_ = out.AddNode(Node{ID: n.ID, Meta: maps.Clone(n.Meta)})
	}
	for _, e := range g.Edges() {
		_ = out.AddEdge(e.A, e.B)
	}
	return out
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
