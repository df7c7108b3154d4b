// Package nodelink maps laid-out relationship graphs to visual output.
//
// # Overview
//
// Each node of the filtered graph gets a [Style]: its size is the number of
// in-graph followers and its color is a bucket of the Plotly Dark24
// [Palette] chosen by the node's horizontal position. Styled nodes are then
// emitted either as Cytoscape elements (for the HTTP API and JSON output) or
// as Graphviz DOT with pinned positions for static rendering.
//
// # Usage
//
//	style := nodelink.Attributes(pos["gitcoin"], followers["gitcoin"])
//	els := nodelink.Elements(g, order, pos, followers, nodelink.DefaultScale)
//
//	dot := nodelink.ToDOT(g, pos, followers, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. The DOT source selects the neato engine and pins every node, so
// Graphviz only draws and never moves nodes.
package nodelink
