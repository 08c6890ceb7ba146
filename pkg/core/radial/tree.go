package radial

import (
	"math"
	"sort"

	"github.com/matzehuels/rose/pkg/graph"
)

// StartAngle is where the root's angular interval begins: straight up on a
// canvas whose y axis points down.
const StartAngle = -math.Pi / 2

// angleEpsilon is the distance from the center below which a node has no
// meaningful angle.
const angleEpsilon = 1e-9

// Tree is the BFS spanning tree of a concept graph.
//
// Depth, Parent and Children have an entry for every node of the snapshot.
// The root and disconnected nodes have an empty Parent entry; use
// [Tree.Reachable] rather than comparing against "", since "" is a valid id.
// Disconnected nodes are placed one ring beyond MaxDepth.
type Tree struct {
	Root     string
	Depth    map[string]int
	Parent   map[string]string
	Children map[string][]string

	// Order lists reachable nodes in BFS visit order, root first.
	Order []string
	// Disconnected lists unreachable nodes in snapshot order.
	Disconnected []string
	// MaxDepth is the deepest depth among reachable nodes.
	MaxDepth int

	hasParent map[string]bool
}

// IsTreeEdge reports whether a-b (either direction) is a parent-child link.
func (t *Tree) IsTreeEdge(a, b string) bool {
	return (t.hasParent[a] && t.Parent[a] == b) || (t.hasParent[b] && t.Parent[b] == a)
}

// Reachable reports whether id was discovered from the root.
func (t *Tree) Reachable(id string) bool {
	if id == t.Root {
		return true
	}
	return t.hasParent[id]
}

// ExtractTree runs a breadth-first search from root over adj.
//
// order lists every node in snapshot order; it decides which unreachable
// nodes exist and the order they are reported in. When angles is non-nil and
// every not-yet-discovered neighbour of a node has an entry, those neighbours
// are visited in ascending angle swept clockwise from [StartAngle]. Otherwise
// they keep adjacency (edge discovery) order.
//
// Sectors nest inside [StartAngle, StartAngle+2π) without wrapping, so for
// nodes that sit inside their own sector this sweep orders siblings exactly
// as a sweep from the parent's sector start would. Layout keeps every node
// inside its sector, which makes the order reproduce on relayout.
func ExtractTree(adj Adjacency, order []string, root string, angles map[string]float64) *Tree {
	t := &Tree{
		Root:      root,
		Depth:     make(map[string]int, len(order)),
		Parent:    make(map[string]string, len(order)),
		Children:  make(map[string][]string, len(order)),
		hasParent: make(map[string]bool, len(order)),
	}
	for _, id := range order {
		t.Children[id] = nil
	}

	visited := make(map[string]bool, len(order))
	if _, ok := adj[root]; ok {
		visited[root] = true
		t.Depth[root] = 0
		t.Parent[root] = ""
		queue := []string{root}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			t.Order = append(t.Order, cur)

			for _, nb := range pendingNeighbours(adj[cur], visited, angles) {
				visited[nb] = true
				d := t.Depth[cur] + 1
				t.Depth[nb] = d
				t.Parent[nb] = cur
				t.hasParent[nb] = true
				t.Children[cur] = append(t.Children[cur], nb)
				if d > t.MaxDepth {
					t.MaxDepth = d
				}
				queue = append(queue, nb)
			}
		}
	}

	for _, id := range order {
		if visited[id] {
			continue
		}
		visited[id] = true
		t.Disconnected = append(t.Disconnected, id)
		t.Depth[id] = t.MaxDepth + 1
		t.Parent[id] = ""
	}
	return t
}

// pendingNeighbours returns the unvisited neighbours of a node, deduplicated,
// in the order they should be enqueued.
func pendingNeighbours(neighbours []string, visited map[string]bool, angles map[string]float64) []string {
	var out []string
	seen := make(map[string]bool, len(neighbours))
	for _, nb := range neighbours {
		if visited[nb] || seen[nb] {
			continue
		}
		seen[nb] = true
		out = append(out, nb)
	}
	if len(out) < 2 || angles == nil {
		return out
	}
	for _, nb := range out {
		if _, ok := angles[nb]; !ok {
			return out
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sweep(angles[out[i]]) < sweep(angles[out[j]])
	})
	return out
}

// sweep maps an angle to [0, 2π) measured clockwise on screen from
// StartAngle.
func sweep(a float64) float64 {
	s := math.Mod(a-StartAngle, 2*math.Pi)
	if s < 0 {
		s += 2 * math.Pi
	}
	return s
}

// CurrentAngles returns the angle of every node around center (normally the
// root's position). Nodes on the center or with non-finite coordinates are
// omitted.
func CurrentAngles(nodes []graph.Node, center graph.Position) map[string]float64 {
	angles := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		if !n.Position.IsFinite() {
			continue
		}
		dx, dy := n.Position.X-center.X, n.Position.Y-center.Y
		if math.Hypot(dx, dy) < angleEpsilon {
			continue
		}
		angles[n.ID] = math.Atan2(dy, dx)
	}
	return angles
}
