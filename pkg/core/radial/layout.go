package radial

import "github.com/matzehuels/rose/pkg/graph"

// Result is the outcome of a layout call.
type Result struct {
	// Positions holds exactly one position per distinct node id.
	Positions map[string]graph.Position
	// Tree is the spanning tree the layout was built on.
	Tree *Tree
	// Targets are the pre-relaxation ring/wedge targets.
	Targets map[string]Target
	// Sectors are the angular wedges of reachable nodes. Every reachable
	// non-root node ends strictly inside its own wedge.
	Sectors map[string]Sector
}

// Layout computes a radial layout of g. The first node is the root and ends
// exactly on opts.Center. Zero option fields take defaults.
//
// Siblings are ordered by their current angle around the root's current
// position (the center if the root's position is not finite). The result
// depends on the input positions only through that order, and since every
// node ends inside its own wedge, laying out a layout's output again
// returns the same positions.
//
// An empty graph yields an empty result. Layout never mutates g.
func Layout(g graph.Graph, opts Options) Result {
	opts = opts.WithDefaults()
	if len(g.Nodes) == 0 {
		return Result{Positions: map[string]graph.Position{}, Targets: map[string]Target{}, Sectors: map[string]Sector{}}
	}

	ids := g.NodeIDs()
	root := ids[0]

	var angles map[string]float64
	if !opts.DiscoveryOrder {
		origin := g.Nodes[0].Position
		if !origin.IsFinite() {
			origin = opts.Center
		}
		angles = CurrentAngles(g.Nodes, origin)
	}

	adj := BuildAdjacency(ids, g.Edges)
	tree := ExtractTree(adj, ids, root, angles)
	sectors := Sectors(tree, Weights(tree))
	targets := Targets(tree, opts)

	sim := newSimulation(g.Nodes, g.Edges, tree, targets, sectors, opts)
	sim.run()

	pos := sim.positions()
	pos[root] = opts.Center
	return Result{Positions: pos, Tree: tree, Targets: targets, Sectors: sectors}
}

// Apply returns a copy of g with every node moved to its layout position.
// Node order, ids, data and edges are unchanged.
func Apply(g graph.Graph, opts Options) graph.Graph {
	if len(g.Nodes) == 0 {
		return g.Clone()
	}
	return g.WithPositions(Layout(g, opts).Positions)
}
