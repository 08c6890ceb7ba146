// Package render groups the renderers for concept graphs.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage draws positioned graphs with Graphviz. Positions
// are pinned, so the output matches the radial layout.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/rose/pkg/render/nodelink
package render
