package network

import (
	"context"
	stderrors "errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/rose/pkg/core/radial"
	"github.com/matzehuels/rose/pkg/errors"
	"github.com/matzehuels/rose/pkg/generate"
	"github.com/matzehuels/rose/pkg/graph"
	"github.com/matzehuels/rose/pkg/pipeline"
)

// Explanations used when the generator has nothing to offer.
const (
	FallbackExplanation = "Expand to see related concepts"
	EmptyExplanation    = "No explanation yet"
)

// contextWords is how many existing words accompany an explanation request.
const contextWords = 5

// Service applies word and network operations to a persisted State.
type Service struct {
	Store     Store
	Generator generate.Generator
	Runner    *pipeline.Runner
	Logger    *log.Logger

	// Layout configures Organize and the position of a network's first word.
	Layout radial.Options
	// Placement configures where expanded concepts are placed.
	Placement radial.PlacementOptions

	mu  sync.Mutex
	now func() time.Time
}

// NewService creates a service. A nil runner gets an uncached one.
func NewService(store Store, gen generate.Generator, runner *pipeline.Runner, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Service{
		Store:     store,
		Generator: gen,
		Runner:    runner,
		Logger:    logger,
		Layout:    radial.DefaultOptions(),
		Placement: radial.DefaultPlacementOptions(),
		now:       time.Now,
	}
}

// ExpandResult lists what an expansion changed.
type ExpandResult struct {
	// Added are the ids of new nodes.
	Added []string
	// Linked are the ids of existing nodes that gained an edge.
	Linked []string
}

// =============================================================================
// Queries
// =============================================================================

// State returns the current persisted state.
func (s *Service) State(ctx context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Active returns a copy of the active network.
func (s *Service) Active(ctx context.Context) (Network, error) {
	st, err := s.State(ctx)
	if err != nil {
		return Network{}, err
	}
	return *st.Active(), nil
}

// =============================================================================
// Word operations
// =============================================================================

// AddWord adds word to the active network at pos and returns its node id.
// A word already in the network returns the existing id. The first word of a
// network is placed at the layout center. The explanation is fetched after
// the node is stored; if that fails the node keeps a fallback explanation.
func (s *Service) AddWord(ctx context.Context, word string, pos graph.Position) (string, error) {
	if err := errors.ValidateWord(word); err != nil {
		return "", err
	}

	var (
		netID, nodeID string
		req           generate.ExplainRequest
	)
	err := s.mutate(ctx, func(st *State) error {
		net := st.Active()
		if existing, ok := net.Graph().NodeByWord(word); ok {
			nodeID = existing.ID
			return errUnchanged
		}

		if len(net.Nodes) == 0 {
			pos = s.center()
		}
		nodeID = uuid.NewString()
		net.Nodes = append(net.Nodes, graph.Node{
			ID:       nodeID,
			Type:     graph.NodeType,
			Position: pos,
			Data:     graph.WordData{Word: word, IsLoading: true, IsNew: true},
		})
		net.touch(s.now())
		st.ActiveID = net.ID
		netID = net.ID

		words := net.Graph().Words()
		req = generate.ExplainRequest{
			Word:       word,
			Background: net.Background,
			Context:    words[:min(len(words)-1, contextWords)],
		}
		return nil
	})
	if err != nil || netID == "" {
		return nodeID, err
	}
	s.Logger.Info("added word", "word", word, "id", nodeID)

	explanation, genErr := s.Generator.Explain(ctx, req)
	switch {
	case genErr != nil:
		s.Logger.Warn("explanation failed", "word", word, "error", genErr)
		explanation = FallbackExplanation
	case explanation == "":
		explanation = EmptyExplanation
	}

	err = s.mutate(ctx, func(st *State) error {
		net, ok := st.Find(netID)
		if !ok {
			return errUnchanged
		}
		i := net.nodeIndex(nodeID)
		if i < 0 {
			return errUnchanged
		}
		net.Nodes[i].Data.Explanation = &explanation
		net.Nodes[i].Data.IsLoading = false
		return nil
	})
	return nodeID, err
}

// ExpandWord asks the generator for concepts related to the node referenced
// by ref (an id or a word) and adds them around it. It does nothing when the
// node is missing, already expanded or loading. On generator failure only the
// loading flag is reset and the error is returned.
func (s *Service) ExpandWord(ctx context.Context, ref, direction string) (ExpandResult, error) {
	if err := errors.ValidateDirection(direction); err != nil {
		return ExpandResult{}, err
	}

	var (
		netID, nodeID string
		req           generate.RelatedRequest
	)
	err := s.mutate(ctx, func(st *State) error {
		net := st.Active()
		node, ok := net.FindNode(ref)
		if !ok || node.Data.IsExpanded || node.Data.IsLoading {
			return errUnchanged
		}
		net.Nodes[net.nodeIndex(node.ID)].Data.IsLoading = true
		netID, nodeID = net.ID, node.ID
		req = generate.RelatedRequest{
			Word:          node.Data.Word,
			Background:    net.Background,
			Direction:     direction,
			ExistingWords: net.Graph().Words(),
		}
		return nil
	})
	if err != nil || nodeID == "" {
		return ExpandResult{}, err
	}

	concepts, genErr := s.Generator.Related(ctx, req)
	if genErr == nil && len(concepts) == 0 {
		genErr = errors.New(errors.ErrCodeGeneration, "no related concepts for %q", req.Word)
	}

	var res ExpandResult
	err = s.mutate(ctx, func(st *State) error {
		net, ok := st.Find(netID)
		if !ok {
			return errUnchanged
		}
		i := net.nodeIndex(nodeID)
		if i < 0 {
			return errUnchanged
		}
		net.Nodes[i].Data.IsLoading = false
		if genErr != nil {
			return nil
		}
		net.Nodes[i].Data.IsExpanded = true
		res = s.attach(net, net.Nodes[i], concepts)
		net.touch(s.now())
		return nil
	})
	if genErr != nil {
		s.Logger.Warn("expansion failed", "word", req.Word, "error", genErr)
		if err != nil {
			return ExpandResult{}, err
		}
		return ExpandResult{}, genErr
	}
	if err == nil {
		s.Logger.Info("expanded word", "word", req.Word, "added", len(res.Added), "linked", len(res.Linked))
	}
	return res, err
}

// attach links parent to every concept: existing words get an edge if none
// exists yet, new words get a node placed around parent.
func (s *Service) attach(net *Network, parent graph.Node, concepts []generate.Concept) ExpandResult {
	var res ExpandResult

	placed := make([]graph.Position, 0, len(net.Nodes)+len(concepts))
	for _, n := range net.Nodes {
		placed = append(placed, n.Position)
	}

	for i, c := range concepts {
		if existing, ok := net.Graph().NodeByWord(c.Word); ok {
			if existing.ID == parent.ID || net.Graph().HasEdge(parent.ID, existing.ID) {
				continue
			}
			net.Edges = append(net.Edges, newEdge(parent.ID, existing.ID, c.Relation))
			res.Linked = append(res.Linked, existing.ID)
			continue
		}

		pos := radial.PlaceSibling(parent.Position, placed, i, len(concepts), s.Placement)
		placed = append(placed, pos)

		gloss := c.Gloss
		id := uuid.NewString()
		net.Nodes = append(net.Nodes, graph.Node{
			ID:       id,
			Type:     graph.NodeType,
			Position: pos,
			Data:     graph.WordData{Word: c.Word, Explanation: &gloss, IsNew: true},
		})
		net.Edges = append(net.Edges, newEdge(parent.ID, id, c.Relation))
		res.Added = append(res.Added, id)
	}
	return res
}

func newEdge(source, target, relation string) graph.Edge {
	e := graph.Edge{ID: source + "-" + target, Source: source, Target: target}
	if relation != "" {
		e.Data = &graph.EdgeData{Label: relation}
	}
	return e
}

// Organize lays out the active network and stores the new positions.
func (s *Service) Organize(ctx context.Context) error {
	return s.mutate(ctx, func(st *State) error {
		net := st.Active()
		if len(net.Nodes) == 0 {
			return errUnchanged
		}
		positioned, hit, err := s.Runner.LayoutWithCacheInfo(ctx, net.Graph(), pipeline.Options{Layout: s.Layout})
		if err != nil {
			return err
		}
		net.Nodes = positioned.Nodes
		net.touch(s.now())
		s.Logger.Info("organized network", "network", net.Name, "nodes", len(net.Nodes), "cached", hit)
		return nil
	})
}

// ClearNew resets the new-node highlight in the given network, or in the
// active one when id is empty.
func (s *Service) ClearNew(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *State) error {
		net, err := s.lookup(st, id)
		if err != nil {
			return err
		}
		for i := range net.Nodes {
			net.Nodes[i].Data.IsNew = false
		}
		return nil
	})
}

// SetBackground sets the background context of the active network.
func (s *Service) SetBackground(ctx context.Context, background string) error {
	return s.mutate(ctx, func(st *State) error {
		net := st.Active()
		net.Background = background
		net.touch(s.now())
		return nil
	})
}

// =============================================================================
// Network operations
// =============================================================================

// Create adds a network and makes it active.
func (s *Service) Create(ctx context.Context, name string) (Network, error) {
	if name != "" {
		if err := errors.ValidateNetworkName(name); err != nil {
			return Network{}, err
		}
	}
	var created Network
	err := s.mutate(ctx, func(st *State) error {
		created = New(name, s.now())
		st.Networks = append(st.Networks, created)
		st.ActiveID = created.ID
		return nil
	})
	return created, err
}

// Switch makes the network with the given id active.
func (s *Service) Switch(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *State) error {
		net, err := s.lookup(st, id)
		if err != nil {
			return err
		}
		st.ActiveID = net.ID
		return nil
	})
}

// Rename changes the name of the network with the given id.
func (s *Service) Rename(ctx context.Context, id, name string) error {
	if err := errors.ValidateNetworkName(name); err != nil {
		return err
	}
	return s.mutate(ctx, func(st *State) error {
		net, err := s.lookup(st, id)
		if err != nil {
			return err
		}
		net.Name = name
		net.touch(s.now())
		return nil
	})
}

// Delete removes the network with the given id. Deleting the last network
// leaves a fresh one; deleting the active one activates the first.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *State) error {
		i := st.index(id)
		if i < 0 {
			return errors.New(errors.ErrCodeNetworkNotFound, "network %q not found", id)
		}
		st.Networks = append(st.Networks[:i], st.Networks[i+1:]...)
		if len(st.Networks) == 0 {
			st.Networks = []Network{New("", s.now())}
		}
		if st.ActiveID == id {
			st.ActiveID = st.Networks[0].ID
		}
		return nil
	})
}

// =============================================================================
// Helpers
// =============================================================================

// errUnchanged aborts a mutation without saving and without error.
var errUnchanged = stderrors.New("unchanged")

// mutate loads the state, applies fn and saves the result unless fn fails.
func (s *Service) mutate(ctx context.Context, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		if stderrors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	if err := s.Store.Save(ctx, st); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save state")
	}
	return nil
}

func (s *Service) load(ctx context.Context) (*State, error) {
	st, err := s.Store.Load(ctx)
	if stderrors.Is(err, ErrNoState) {
		return NewState(s.now()), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load state")
	}
	st.Normalize(s.now())
	return st, nil
}

// lookup resolves id, or the active network when id is empty.
func (s *Service) lookup(st *State, id string) (*Network, error) {
	if id == "" {
		return st.Active(), nil
	}
	net, ok := st.Find(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNetworkNotFound, "network %q not found", id)
	}
	return net, nil
}

func (s *Service) center() graph.Position {
	return s.Layout.WithDefaults().Center
}
