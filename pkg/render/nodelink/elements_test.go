package nodelink

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/impactgraph/pkg/graph"
	"github.com/matzehuels/impactgraph/pkg/layout"
)

func pair(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(nil)
	for _, id := range []string{"Alpha", "Beta"} {
		if err := g.AddNode(graph.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddEdge("Alpha", "Beta"); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestElements(t *testing.T) {
	g := pair(t)
	pos := layout.Positions{
		"Alpha": {X: -1, Y: 0.5},
		"Beta":  {X: 1, Y: -0.5},
	}
	followers := map[string][]string{"Beta": {"Alpha"}}

	els := Elements(g, []string{"Beta", "Alpha"}, pos, followers, DefaultScale)
	if len(els) != 3 {
		t.Fatalf("len(Elements) = %d, want 3", len(els))
	}

	first, ok := els[0].Data.(NodeData)
	if !ok || first.ID != "Beta" {
		t.Fatalf("first element = %+v, want node Beta", els[0])
	}
	if first.NodeSize != 1 || first.Label != "Beta" {
		t.Errorf("Beta data = %+v", first)
	}
	if *els[0].Position != (layout.Point{X: 400, Y: -150}) {
		t.Errorf("Beta position = %+v, want scaled (400, -150)", *els[0].Position)
	}

	edge, ok := els[2].Data.(EdgeData)
	if !ok || edge.Source != "Alpha" || edge.Target != "Beta" {
		t.Errorf("edge = %+v", els[2])
	}
	if els[2].Position != nil {
		t.Error("edge element has a position")
	}
}

func TestElements_SkipsUnpositionedAndUnknown(t *testing.T) {
	g := pair(t)
	pos := layout.Positions{"Alpha": {}}
	els := Elements(g, []string{"Ghost", "Alpha", "Beta", "Alpha"}, pos, nil, DefaultScale)
	if len(els) != 1 {
		t.Fatalf("len(Elements) = %d, want 1: %+v", len(els), els)
	}
	if d := els[0].Data.(NodeData); d.ID != "Alpha" {
		t.Errorf("node = %s, want Alpha", d.ID)
	}
}

func TestElements_EmptyGraph(t *testing.T) {
	els := Elements(graph.New(nil), nil, layout.Positions{}, nil, DefaultScale)
	data, err := json.Marshal(els)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("empty elements = %s, want []", data)
	}
}

func TestElements_JSONShape(t *testing.T) {
	g := pair(t)
	pos := layout.Positions{"Alpha": {X: 0.1}, "Beta": {X: 0.2}}
	data, err := json.Marshal(Elements(g, nil, pos, nil, Scale{X: 1, Y: 1}))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"node_size":0`, `"color":"#`, `"position":{"x":0.1,"y":0}`, `"source":"Alpha"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON %s missing %s", data, want)
		}
	}
}

func TestElement_UnmarshalJSON(t *testing.T) {
	g := pair(t)
	pos := layout.Positions{"Alpha": {X: 0.5, Y: -0.5}, "Beta": {X: -0.5}}
	in := Elements(g, nil, pos, map[string][]string{"Alpha": {"Beta"}}, DefaultScale)

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out []Element
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	node, ok := out[0].Data.(NodeData)
	if !ok || node != in[0].Data.(NodeData) || *out[0].Position != *in[0].Position {
		t.Errorf("node round trip = %+v", out[0])
	}
	edge, ok := out[2].Data.(EdgeData)
	if !ok || edge != in[2].Data.(EdgeData) || out[2].Position != nil {
		t.Errorf("edge round trip = %+v", out[2])
	}
}
