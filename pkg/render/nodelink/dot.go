package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/impactgraph/pkg/graph"
	"github.com/matzehuels/impactgraph/pkg/layout"
)

// Options configures static node-link rendering.
type Options struct {
	// Scale converts layout coordinates to points. Zero uses DefaultScale.
	Scale Scale
	// Detailed appends the follower count to node labels.
	Detailed bool
}

// ToDOT converts a laid-out graph to Graphviz DOT.
//
// Every node is pinned at its scaled layout position and the neato engine is
// selected, so the rendered picture matches the computed layout. Nodes with
// no position are omitted along with their edges.
func ToDOT(g *graph.Graph, pos layout.Positions, followers map[string][]string, opts Options) string {
	scale := opts.Scale
	if scale.X == 0 && scale.Y == 0 {
		scale = DefaultScale
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=10, fontcolor=white, fixedsize=true];\n")
	buf.WriteString("  edge [color=\"#999999\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		p, ok := pos[n.ID]
		if !ok {
			continue
		}
		style := Attributes(p, followers[n.ID])
		label := n.ID
		if opts.Detailed {
			label = fmt.Sprintf("%s\n%d", n.ID, style.Size)
		}
		// graphviz y grows upwards; screen y grows downwards.
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%.2f,%.2f!\", width=%.2f, fillcolor=%q];\n",
			n.ID, label, p.X*scale.X, -p.Y*scale.Y, nodeWidth(style.Size), style.Color)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if _, ok := pos[e.A]; !ok {
			continue
		}
		if _, ok := pos[e.B]; !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.A, e.B)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeWidth maps a follower count to a diameter in inches.
func nodeWidth(size int) float64 {
	return min(0.4+0.08*float64(size), 2.0)
}

// RenderSVG draws a DOT graph from ToDOT to SVG with Graphviz. Positions
// are pinned, so Graphviz does not move nodes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
