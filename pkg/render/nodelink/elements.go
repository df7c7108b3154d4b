package nodelink

import (
	"encoding/json"

	"github.com/matzehuels/impactgraph/pkg/graph"
	"github.com/matzehuels/impactgraph/pkg/layout"
)

// Scale multiplies layout coordinates into display units.
type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DefaultScale matches a 400x300 display canvas.
var DefaultScale = Scale{X: 400, Y: 300}

// Element is one Cytoscape element: a node when Position is set, an edge
// otherwise.
type Element struct {
	Data     any           `json:"data"`
	Position *layout.Point `json:"position,omitempty"`
}

// UnmarshalJSON restores the typed payload: edges carry a source, nodes
// do not.
func (e *Element) UnmarshalJSON(data []byte) error {
	var raw struct {
		Data     json.RawMessage `json:"data"`
		Position *layout.Point   `json:"position"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var shape struct {
		Source *string `json:"source"`
	}
	if err := json.Unmarshal(raw.Data, &shape); err != nil {
		return err
	}
	e.Position = raw.Position
	if shape.Source != nil {
		var d EdgeData
		if err := json.Unmarshal(raw.Data, &d); err != nil {
			return err
		}
		e.Data = d
		return nil
	}
	var d NodeData
	if err := json.Unmarshal(raw.Data, &d); err != nil {
		return err
	}
	e.Data = d
	return nil
}

// NodeData is the data payload of a node element.
type NodeData struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	NodeSize int    `json:"node_size"`
	Color    string `json:"color"`
}

// EdgeData is the data payload of an edge element.
type EdgeData struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Elements builds the Cytoscape element list for g.
//
// Nodes are emitted in the given order (all graph nodes sorted by ID when
// order is empty), skipping IDs that are not in g or have no position.
// Edges follow, sorted, and only between emitted nodes. followers maps each
// node to the IDs of the nodes following it.
func Elements(g *graph.Graph, order []string, pos layout.Positions, followers map[string][]string, scale Scale) []Element {
	if len(order) == 0 {
		order = g.NodeIDs()
	}

	out := make([]Element, 0, g.NodeCount()+g.EdgeCount())
	emitted := make(map[string]bool, g.NodeCount())
	for _, id := range order {
		if emitted[id] {
			continue
		}
		if _, ok := g.Node(id); !ok {
			continue
		}
		p, ok := pos[id]
		if !ok {
			continue
		}
		style := Attributes(p, followers[id])
		out = append(out, Element{
			Data: NodeData{
				ID:       id,
				Label:    id,
				NodeSize: style.Size,
				Color:    style.Color,
			},
			Position: &layout.Point{X: p.X * scale.X, Y: p.Y * scale.Y},
		})
		emitted[id] = true
	}

	for _, e := range g.Edges() {
		if emitted[e.A] && emitted[e.B] {
			out = append(out, Element{Data: EdgeData{Source: e.A, Target: e.B}})
		}
	}
	return out
}
