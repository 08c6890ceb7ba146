package network

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/rose/pkg/graph"
)

// DefaultName is the name given to networks created without one.
const DefaultName = "New network"

// Network is one named concept graph. Nodes[0], when present, is the root.
type Network struct {
	ID         string       `json:"id" bson:"id"`
	Name       string       `json:"name" bson:"name"`
	Background string       `json:"background" bson:"background"`
	Nodes      []graph.Node `json:"nodes" bson:"nodes"`
	Edges      []graph.Edge `json:"edges" bson:"edges"`
	// CreatedAt and UpdatedAt are Unix milliseconds.
	CreatedAt int64 `json:"createdAt" bson:"created_at"`
	UpdatedAt int64 `json:"updatedAt" bson:"updated_at"`
}

// New returns an empty network. An empty name becomes DefaultName.
func New(name string, now time.Time) Network {
	if name == "" {
		name = DefaultName
	}
	return Network{
		ID:        uuid.NewString(),
		Name:      name,
		Nodes:     []graph.Node{},
		Edges:     []graph.Edge{},
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}
}

// Graph returns the network's nodes and edges as a layout snapshot.
func (n Network) Graph() graph.Graph {
	return graph.Graph{Nodes: n.Nodes, Edges: n.Edges}
}

// FindNode resolves ref as a node id, then as a word.
func (n Network) FindNode(ref string) (graph.Node, bool) {
	g := n.Graph()
	if node, ok := g.Node(ref); ok {
		return node, true
	}
	return g.NodeByWord(ref)
}

func (n *Network) nodeIndex(id string) int {
	for i := range n.Nodes {
		if n.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (n *Network) touch(now time.Time) {
	n.UpdatedAt = now.UnixMilli()
}

// State is everything the service persists.
type State struct {
	Networks []Network `json:"networks" bson:"networks"`
	ActiveID string    `json:"activeNetworkId" bson:"active_network_id"`
}

// NewState returns a state holding one fresh, active network.
func NewState(now time.Time) *State {
	n := New("", now)
	return &State{Networks: []Network{n}, ActiveID: n.ID}
}

// Normalize makes sure the state has at least one network and that ActiveID
// names one of them.
func (s *State) Normalize(now time.Time) {
	if len(s.Networks) == 0 {
		s.Networks = []Network{New("", now)}
	}
	if s.index(s.ActiveID) < 0 {
		s.ActiveID = s.Networks[0].ID
	}
}

// Active returns the active network, falling back to the first one. It
// returns nil only for a state without networks.
func (s *State) Active() *Network {
	if i := s.index(s.ActiveID); i >= 0 {
		return &s.Networks[i]
	}
	if len(s.Networks) == 0 {
		return nil
	}
	return &s.Networks[0]
}

// Find returns the network with the given id.
func (s *State) Find(id string) (*Network, bool) {
	if i := s.index(id); i >= 0 {
		return &s.Networks[i], true
	}
	return nil, false
}

func (s *State) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Networks {
		if s.Networks[i].ID == id {
			return i
		}
	}
	return -1
}
