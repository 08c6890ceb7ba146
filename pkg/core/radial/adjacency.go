package radial

import "github.com/matzehuels/rose/pkg/graph"

// Adjacency maps a node id to its undirected neighbours in first-seen edge
// order. Every node of the snapshot has an entry, possibly empty. Parallel
// edges show up as repeated neighbours.
type Adjacency map[string][]string

// BuildAdjacency builds the undirected adjacency of the nodes in ids.
//
// An edge is kept only if both endpoints are in ids and differ. Malformed
// edges are ignored rather than reported.
func BuildAdjacency(ids []string, edges []graph.Edge) Adjacency {
	adj := make(Adjacency, len(ids))
	for _, id := range ids {
		if _, ok := adj[id]; !ok {
			adj[id] = nil
		}
	}
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		if _, ok := adj[e.Source]; !ok {
			continue
		}
		if _, ok := adj[e.Target]; !ok {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}
	return adj
}

// Degree returns the number of neighbour entries of id, counting parallel
// edges.
func (a Adjacency) Degree(id string) int {
	return len(a[id])
}
