// Package graph provides the undirected relationship graph used by the
// display pipeline, together with its JSON serialization.
//
// # Overview
//
// Nodes are project names; an edge joins two projects when either one
// follows the other. Direction is intentionally discarded: the visualization
// only cares about co-connection. The type enforces the invariants the rest
// of the pipeline relies on:
//
//   - Node IDs are unique and non-empty
//   - Self loops are rejected ([ErrSelfLoop])
//   - Parallel edges collapse into one (AddEdge is idempotent)
//
// # Building a Graph
//
//	g := graph.New(nil)
//	_ = g.AddNode(graph.Node{ID: "Alpha"})
//	_ = g.AddNode(graph.Node{ID: "Beta"})
//	_ = g.AddEdge("Alpha", "Beta")
//	g.Degree("Alpha") // 1
//
// # Serialization
//
// The node-link JSON format mirrors the element list consumed by the
// front-end, minus positions and styles:
//
//	{
//	  "nodes": [{"id": "Alpha"}, {"id": "Beta"}],
//	  "edges": [{"source": "Alpha", "target": "Beta"}]
//	}
//
// Nodes and edges are emitted in sorted order, so [MarshalGraph] output is
// stable and suitable for hashing into cache keys.
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Read-only use from several
// goroutines is fine once construction is complete.
package graph
