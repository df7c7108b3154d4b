package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// =============================================================================
// Wire Types
// =============================================================================

// Document is the node-link serialization of a Graph.
type Document struct {
	Nodes []DocNode `json:"nodes" bson:"nodes"`
	Edges []DocEdge `json:"edges" bson:"edges"`
}

// DocNode is a serialized node.
type DocNode struct {
	ID   string         `json:"id" bson:"id"`
	Meta map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DocEdge is a serialized undirected edge.
type DocEdge struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// FromGraph converts g to its serialization format with sorted nodes and edges.
func FromGraph(g *Graph) Document {
	out := Document{
		Nodes: make([]DocNode, 0, g.NodeCount()),
		Edges: make([]DocEdge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		dn := DocNode{ID: n.ID}
		if len(n.Meta) > 0 {
			dn.Meta = n.Meta
		}
		out.Nodes = append(out.Nodes, dn)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, DocEdge{Source: e.A, Target: e.B})
	}
	return out
}

// ToGraph rebuilds a Graph from its serialization.
// Returns an error naming the offending node or edge on invalid input.
func ToGraph(doc Document) (*Graph, error) {
	g := New(nil)
	for _, n := range doc.Nodes {
		if err := g.AddNode(Node{ID: n.ID, Meta: n.Meta}); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for _, e := range doc.Edges {
		if err := g.AddEdge(e.Source, e.Target); err != nil {
			return nil, fmt.Errorf("add edge %s-%s: %w", e.Source, e.Target, err)
		}
	}
	return g, nil
}

// MarshalGraph converts g to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes g as JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes a JSON graph from r.
func ReadGraph(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToGraph(doc)
}
