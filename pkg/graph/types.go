package graph

import (
	"math"
	"slices"
)

// NodeType is the canvas node type for word nodes.
const NodeType = "wordNode"

// =============================================================================
// Position
// =============================================================================

// Position is a point on the canvas.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Distance returns the euclidean distance between p and q.
func (p Position) Distance(q Position) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// =============================================================================
// Node
// =============================================================================

// WordData is the payload carried by a concept node. It is opaque to layout.
type WordData struct {
	Word        string  `json:"word" bson:"word"`
	Explanation *string `json:"explanation" bson:"explanation"`
	IsLoading   bool    `json:"isLoading" bson:"is_loading"`
	IsExpanded  bool    `json:"isExpanded" bson:"is_expanded"`
	IsNew       bool    `json:"isNew,omitempty" bson:"is_new,omitempty"`
}

// Node is a concept on the canvas.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Type     string   `json:"type,omitempty" bson:"type,omitempty"`
	Position Position `json:"position" bson:"position"`
	Data     WordData `json:"data" bson:"data"`
}

// =============================================================================
// Edge
// =============================================================================

// EdgeData is the optional payload of an edge.
type EdgeData struct {
	Label string `json:"label,omitempty" bson:"label,omitempty"`
}

// Edge connects two nodes. Direction is kept for display only; layout treats
// edges as undirected.
type Edge struct {
	ID     string    `json:"id" bson:"id"`
	Source string    `json:"source" bson:"source"`
	Target string    `json:"target" bson:"target"`
	Data   *EdgeData `json:"data,omitempty" bson:"data,omitempty"`
}

// Label returns the relation label or "" when the edge carries none.
func (e Edge) Label() string {
	if e.Data == nil {
		return ""
	}
	return e.Data.Label
}

// Connects reports whether e joins a and b in either direction.
func (e Edge) Connects(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// =============================================================================
// Graph
// =============================================================================

// Graph is an ordered snapshot of nodes and edges. The first node is the root.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Root returns the root node. ok is false for an empty graph.
func (g Graph) Root() (Node, bool) {
	if len(g.Nodes) == 0 {
		return Node{}, false
	}
	return g.Nodes[0], true
}

// NodeIDs returns the node ids in input order.
func (g Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Node looks up a node by id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeByWord looks up a node by its word.
func (g Graph) NodeByWord(word string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Data.Word == word {
			return n, true
		}
	}
	return Node{}, false
}

// Words returns the words of all nodes in input order.
func (g Graph) Words() []string {
	words := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		words[i] = n.Data.Word
	}
	return words
}

// HasEdge reports whether any edge joins a and b in either direction.
func (g Graph) HasEdge(a, b string) bool {
	return slices.ContainsFunc(g.Edges, func(e Edge) bool { return e.Connects(a, b) })
}

// Positions returns the current node positions keyed by id.
func (g Graph) Positions() map[string]Position {
	out := make(map[string]Position, len(g.Nodes))
	for _, n := range g.Nodes {
		out[n.ID] = n.Position
	}
	return out
}

// WithPositions returns a copy of g whose node positions are taken from pos.
// Nodes missing from pos keep their position; ids in pos that are not nodes
// of g are ignored.
func (g Graph) WithPositions(pos map[string]Position) Graph {
	out := g.Clone()
	for i := range out.Nodes {
		if p, ok := pos[out.Nodes[i].ID]; ok {
			out.Nodes[i].Position = p
		}
	}
	return out
}

// Clone returns a deep copy of g.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		if n.Data.Explanation != nil {
			s := *n.Data.Explanation
			n.Data.Explanation = &s
		}
		out.Nodes[i] = n
	}
	for i, e := range g.Edges {
		if e.Data != nil {
			d := *e.Data
			e.Data = &d
		}
		out.Edges[i] = e
	}
	return out
}
