// Package render converts rendered graphs between output formats.
//
// Node-link output itself (styles, Cytoscape elements, Graphviz DOT and SVG)
// lives in the [nodelink] subpackage. This package only turns an SVG into
// PDF or PNG with the external rsvg-convert tool from librsvg:
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.Convert(ctx, svg, render.PNG, 2)
//
// Without rsvg-convert on PATH, [Convert] returns [ErrConverterMissing].
package render
