package pipeline

import (
	"github.com/matzehuels/rose/pkg/core/radial"
	"github.com/matzehuels/rose/pkg/graph"
)

// ComputeLayout runs the radial layout on g and returns a copy with every
// node repositioned. The input graph is not modified.
//
// Options are expected to be validated; zero fields fall back to defaults.
func ComputeLayout(g graph.Graph, opts Options) graph.Graph {
	res := radial.Layout(g, opts.Layout)
	if opts.Logger != nil {
		opts.Logger.Debug("radial tree",
			"root", res.Tree.Root,
			"depth", res.Tree.MaxDepth,
			"disconnected", len(res.Tree.Disconnected))
	}
	if len(g.Nodes) == 0 {
		return g.Clone()
	}
	return g.WithPositions(res.Positions)
}
