package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/impactgraph/pkg/layout"
)

func TestToDOT(t *testing.T) {
	g := pair(t)
	pos := layout.Positions{"Alpha": {X: -1, Y: 1}, "Beta": {X: 1, Y: 0.5}}
	dot := ToDOT(g, pos, map[string][]string{"Alpha": {"Beta"}}, Options{})

	for _, want := range []string{
		"graph G {",
		"layout=neato;",
		`"Alpha" [label="Alpha", pos="-400.00,-300.00!"`,
		`"Beta" [label="Beta", pos="400.00,-150.00!"`,
		`"Alpha" -- "Beta";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	g := pair(t)
	pos := layout.Positions{"Alpha": {}, "Beta": {}}
	dot := ToDOT(g, pos, map[string][]string{"Alpha": {"Beta"}}, Options{Detailed: true})
	if !strings.Contains(dot, `label="Alpha\n1"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOT_OmitsUnpositioned(t *testing.T) {
	g := pair(t)
	dot := ToDOT(g, layout.Positions{"Alpha": {}}, nil, Options{})
	if strings.Contains(dot, `"Beta"`) {
		t.Errorf("unpositioned node rendered:\n%s", dot)
	}
}

func TestNodeWidth(t *testing.T) {
	if nodeWidth(0) != 0.4 {
		t.Errorf("nodeWidth(0) = %v", nodeWidth(0))
	}
	if nodeWidth(1000) != 2.0 {
		t.Errorf("nodeWidth(1000) = %v, want capped 2.0", nodeWidth(1000))
	}
}

func TestRenderSVG(t *testing.T) {
	g := pair(t)
	pos := layout.Positions{"Alpha": {X: -1}, "Beta": {X: 1}}
	svg, err := RenderSVG(context.Background(), ToDOT(g, pos, nil, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output is not SVG")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 10.00 20.00" width="10" height="20"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
}
