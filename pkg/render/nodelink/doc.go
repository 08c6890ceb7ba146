// Package nodelink renders positioned concept graphs as node-link diagrams.
//
// # Overview
//
// Positions come from the radial layout; Graphviz only draws. Every node is
// emitted with a pinned position (pos="x,y!") and the neato engine is used,
// so the picture matches the canvas exactly.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{ShowRelations: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For raster output:
//
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Coordinates
//
// Canvas coordinates grow downward; Graphviz coordinates grow upward. ToDOT
// negates y and sets inputscale=72 so one canvas pixel is one point.
//
// # Styling
//
//   - the root word is filled in rose
//   - words flagged as new get a bold outline
//   - words still waiting for an explanation are dashed
//   - edge labels carry the relation when ShowRelations is set
package nodelink
