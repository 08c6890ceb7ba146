// Package pkg provides the core libraries for Rose concept maps.
//
// # Overview
//
// Rose grows a network of words outward from a root concept. Each word gets
// a short explanation and can be expanded into related concepts; the radial
// layout arranges the result in rings around the root. The pkg directory is
// organized into these areas:
//
//  1. [core/radial] - Radial layout and sibling placement
//  2. [graph] - Nodes, edges and positions with their JSON form
//  3. [network] - Named networks, the active network and word operations
//  4. [generate] - Explanations and related concepts from a chat model
//  5. [pipeline] - Orchestration (layout → render) with caching
//  6. [render/nodelink] - DOT, SVG and PNG output via Graphviz
//  7. [storage], [cache], [config] - Infrastructure
//
// # Architecture
//
// The typical data flow through Rose:
//
//	word add / word expand
//	         ↓
//	    [generate] package (explanations + related concepts)
//	         ↓
//	    [network] package (nodes, edges, sibling placement)
//	         ↓
//	    [core/radial] package (rings around the root)
//	         ↓
//	    [render/nodelink] package
//	         ↓
//	    SVG/PNG/DOT/JSON output
//
// # Quick Start
//
// Lay out a graph file and render it:
//
//	import (
//	    "github.com/matzehuels/rose/pkg/core/radial"
//	    "github.com/matzehuels/rose/pkg/graph"
//	    "github.com/matzehuels/rose/pkg/render/nodelink"
//	)
//
//	g, _ := graph.ReadGraphFile("graph.json")
//	g = radial.Apply(g, radial.DefaultOptions())
//
//	dot := nodelink.ToDOT(g, nodelink.Options{ShowRelations: true})
//	svg, _ := nodelink.RenderSVG(ctx, dot)
//
// The [pipeline] package wraps the same steps with a [cache] so repeated
// layouts and renders of an unchanged graph are free.
//
// # Errors
//
// Every package returns [errors] values carrying a code (INVALID_WORD,
// NETWORK_NOT_FOUND, GENERATION_FAILED, ...). The CLI prints their user
// message; the HTTP API maps codes to status codes.
//
// # Observability
//
// [observability] exposes hooks for layout, render, cache and generation
// events. The CLI installs hooks that log at debug level.
//
// [core/radial]: https://pkg.go.dev/github.com/matzehuels/rose/pkg/core/radial
// [graph]: https://pkg.go.dev/github.com/matzehuels/rose/pkg/graph
// [network]: https://pkg.go.dev/github.com/matzehuels/rose/pkg/network
// [generate]: https://pkg.go.dev/github.com/matzehuels/rose/pkg/generate
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/rose/pkg/pipeline
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/rose/pkg/render/nodelink
// [storage]: https://pkg.go.dev/github.com/matzehuels/rose/pkg/storage
// [cache]: https://pkg.go.dev/github.com/matzehuels/rose/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/rose/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/rose/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/rose/pkg/observability
package pkg
