package radial

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/matzehuels/rose/pkg/graph"
)

func node(id string, p graph.Position) graph.Node {
	return graph.Node{ID: id, Type: graph.NodeType, Position: p, Data: graph.WordData{Word: id}}
}

// grownTree builds root r with three children, each with one child, placed
// the way the canvas places new words before any layout.
func grownTree() graph.Graph {
	center := graph.Position{X: DefaultCenterX, Y: DefaultCenterY}
	g := graph.Graph{Nodes: []graph.Node{node("r", center)}}
	var placed []graph.Position
	placed = append(placed, center)

	for i, c := range []string{"a", "b", "c"} {
		p := PlaceSibling(center, placed, i, 3, PlacementOptions{})
		placed = append(placed, p)
		g.Nodes = append(g.Nodes, node(c, p))
		g.Edges = append(g.Edges, graph.Edge{ID: "r-" + c, Source: "r", Target: c})
	}
	for i, c := range []string{"a", "b", "c"} {
		parent := g.Nodes[i+1].Position
		p := PlaceSibling(parent, placed, 0, 1, PlacementOptions{})
		placed = append(placed, p)
		gc := c + "1"
		g.Nodes = append(g.Nodes, node(gc, p))
		g.Edges = append(g.Edges, graph.Edge{ID: c + "-" + gc, Source: c, Target: gc})
	}
	return g
}

func assertFinite(t *testing.T, pos map[string]graph.Position) {
	t.Helper()
	for id, p := range pos {
		if !p.IsFinite() {
			t.Errorf("position of %s is not finite: %v", id, p)
		}
	}
}

func assertClearance(t *testing.T, pos map[string]graph.Position, clearance float64) {
	t.Helper()
	ids := make([]string, 0, len(pos))
	for id := range pos {
		ids = append(ids, id)
	}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			if d := pos[ids[i]].Distance(pos[ids[j]]); d < clearance-1e-6 {
				t.Errorf("%s and %s are %.2f apart, want >= %v", ids[i], ids[j], d, clearance)
			}
		}
	}
}

func TestLayout_Empty(t *testing.T) {
	res := Layout(graph.Graph{}, Options{})
	if len(res.Positions) != 0 {
		t.Errorf("len(Positions) = %d, want 0", len(res.Positions))
	}
	if got := Apply(graph.Graph{}, Options{}); len(got.Nodes) != 0 {
		t.Errorf("Apply on empty graph returned %d nodes", len(got.Nodes))
	}
}

func TestLayout_SingleNode(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{node("r", graph.Position{X: 10, Y: 10})}}
	res := Layout(g, Options{})

	want := graph.Position{X: DefaultCenterX, Y: DefaultCenterY}
	if res.Positions["r"] != want {
		t.Errorf("root = %v, want %v", res.Positions["r"], want)
	}
}

func TestLayout_RootExactlyAtCenter(t *testing.T) {
	center := graph.Position{X: 123.5, Y: -42}
	res := Layout(grownTree(), Options{Center: center})

	if res.Positions["r"] != center {
		t.Errorf("root = %v, want exactly %v", res.Positions["r"], center)
	}
}

func TestLayout_PreservesIDSet(t *testing.T) {
	g := grownTree()
	res := Layout(g, Options{})

	if len(res.Positions) != len(g.Nodes) {
		t.Fatalf("len(Positions) = %d, want %d", len(res.Positions), len(g.Nodes))
	}
	for _, n := range g.Nodes {
		if _, ok := res.Positions[n.ID]; !ok {
			t.Errorf("missing position for %s", n.ID)
		}
	}
	assertFinite(t, res.Positions)
}

func TestLayout_DoesNotMutateInput(t *testing.T) {
	g := grownTree()
	before := g.Positions()
	_ = Apply(g, Options{})

	for id, p := range g.Positions() {
		if before[id] != p {
			t.Errorf("input position of %s changed", id)
		}
	}
}

func TestLayout_Deterministic(t *testing.T) {
	g := grownTree()
	a := Layout(g, Options{}).Positions
	b := Layout(g, Options{}).Positions
	for id := range a {
		if a[id] != b[id] {
			t.Errorf("position of %s differs between runs: %v vs %v", id, a[id], b[id])
		}
	}
}

func TestLayout_RingsFollowDepth(t *testing.T) {
	res := Layout(grownTree(), Options{})
	center := graph.Position{X: DefaultCenterX, Y: DefaultCenterY}

	for _, c := range []string{"a", "b", "c"} {
		child := res.Positions[c].Distance(center)
		grand := res.Positions[c+"1"].Distance(center)
		if grand <= child {
			t.Errorf("%s1 at radius %.1f should be outside %s at %.1f", c, grand, c, child)
		}
	}
}

func TestLayout_NonFiniteInput(t *testing.T) {
	g := grownTree()
	g.Nodes[2].Position = graph.Position{X: math.NaN(), Y: math.Inf(1)}

	res := Layout(g, Options{})
	assertFinite(t, res.Positions)
}

func TestLayout_AllAtCenter(t *testing.T) {
	g := grownTree()
	for i := range g.Nodes {
		g.Nodes[i].Position = graph.Position{X: DefaultCenterX, Y: DefaultCenterY}
	}

	res := Layout(g, Options{})
	assertFinite(t, res.Positions)
	assertClearance(t, res.Positions, DefaultClearance)
}

func TestLayout_DisconnectedBeyondRings(t *testing.T) {
	center := graph.Position{X: DefaultCenterX, Y: DefaultCenterY}
	g := graph.Graph{
		Nodes: []graph.Node{
			node("r", center),
			node("a", graph.Position{X: 400, Y: 100}),
			node("lonely", graph.Position{X: 700, Y: 300}),
		},
		Edges: edges([2]string{"r", "a"}),
	}

	res := Layout(g, Options{})

	if got := res.Tree.Disconnected; len(got) != 1 || got[0] != "lonely" {
		t.Fatalf("Disconnected = %v, want [lonely]", got)
	}
	ra := res.Positions["a"].Distance(center)
	rl := res.Positions["lonely"].Distance(center)
	if rl <= ra {
		t.Errorf("disconnected node at radius %.1f should lie outside depth-1 node at %.1f", rl, ra)
	}
}

func TestLayout_Idempotent(t *testing.T) {
	first := Apply(grownTree(), Options{})
	second := Apply(first, Options{})

	for i, n := range first.Nodes {
		if d := n.Position.Distance(second.Nodes[i].Position); d > 1e-6 {
			t.Errorf("%s moved %.3f on relayout", n.ID, d)
		}
	}
}

func TestLayout_RelayoutStableRandomTrees(t *testing.T) {
	for n := 8; n <= 40; n += 4 {
		for seed := int64(1); seed <= 4; seed++ {
			t.Run(fmt.Sprintf("n=%d/seed=%d", n, seed), func(t *testing.T) {
				g := sizedGraph(rand.New(rand.NewSource(seed*100+int64(n))), n)
				first := Layout(g, Options{})
				assertInSector(t, first)

				second := Layout(Apply(g, Options{}), Options{})
				for id, p := range first.Positions {
					if d := p.Distance(second.Positions[id]); d > 1e-6 {
						t.Errorf("%s moved %.3f on relayout", id, d)
					}
				}
				for _, id := range first.Tree.Order {
					if !slices.Equal(first.Tree.Children[id], second.Tree.Children[id]) {
						t.Errorf("Children[%s] = %v, then %v", id, first.Tree.Children[id], second.Tree.Children[id])
					}
				}
				assertInSector(t, second)
			})
		}
	}
}

func TestLayout_RelayoutStableStar(t *testing.T) {
	center := graph.Position{X: DefaultCenterX, Y: DefaultCenterY}
	g := graph.Graph{Nodes: []graph.Node{node("r", center)}}
	for i := 0; i < 60; i++ {
		id := fmt.Sprintf("l%d", i)
		g.Nodes = append(g.Nodes, node(id, PlaceSibling(center, nil, i, 60, PlacementOptions{})))
		g.Edges = append(g.Edges, graph.Edge{ID: "r-" + id, Source: "r", Target: id})
	}

	first := Apply(g, Options{})
	second := Apply(first, Options{})

	for i, n := range first.Nodes {
		if d := n.Position.Distance(second.Nodes[i].Position); d > 1e-6 {
			t.Errorf("%s moved %.3f on relayout", n.ID, d)
		}
	}
	assertClearance(t, second.Positions(), DefaultClearance)
}

// assertInSector checks that every reachable node other than the root lies
// within its angular sector around the root.
func assertInSector(t *testing.T, res Result) {
	t.Helper()
	root := res.Positions[res.Tree.Root]
	for _, id := range res.Tree.Order {
		if id == res.Tree.Root {
			continue
		}
		p := res.Positions[id]
		a := sweep(math.Atan2(p.Y-root.Y, p.X-root.X))
		s := res.Sectors[id]
		if a < s.Start-StartAngle-1e-9 || a > s.End-StartAngle+1e-9 {
			t.Errorf("%s at sweep %.4f, outside its sector [%.4f, %.4f]", id, a, s.Start-StartAngle, s.End-StartAngle)
		}
	}
}

func TestLayout_SiblingOrderAroundRoot(t *testing.T) {
	// The root was dragged off the canvas center. Around the root, a is
	// above and b below; around the canvas center the order flips.
	g := graph.Graph{
		Nodes: []graph.Node{
			node("r", graph.Position{X: 100, Y: 100}),
			node("a", graph.Position{X: 100, Y: -100}),
			node("b", graph.Position{X: 100, Y: 300}),
		},
		Edges: edges([2]string{"r", "b"}, [2]string{"r", "a"}),
	}

	res := Layout(g, Options{})

	if want := []string{"a", "b"}; !slices.Equal(res.Tree.Children["r"], want) {
		t.Errorf("Children[r] = %v, want %v", res.Tree.Children["r"], want)
	}
}

func TestLayout_KeepsSiblingOrder(t *testing.T) {
	first := Apply(grownTree(), Options{})
	res := Layout(first, Options{})

	got := res.Tree.Children["r"]
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Children[r] = %v, want %v", got, want)
		}
	}
}

func TestLayout_ClearanceRandomGraphs(t *testing.T) {
	for seed := int64(1); seed <= 12; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			g := randomGraph(rand.New(rand.NewSource(seed)))
			res := Layout(g, Options{})

			if len(res.Positions) != len(g.Nodes) {
				t.Fatalf("len(Positions) = %d, want %d", len(res.Positions), len(g.Nodes))
			}
			assertFinite(t, res.Positions)
			assertClearance(t, res.Positions, DefaultClearance)
		})
	}
}

// randomGraph returns a random tree of 2 to 25 nodes with a few cross edges
// and scattered positions.
func randomGraph(rng *rand.Rand) graph.Graph {
	return sizedGraph(rng, 2+rng.Intn(24))
}

func sizedGraph(rng *rand.Rand, n int) graph.Graph {
	var g graph.Graph
	for i := 0; i < n; i++ {
		p := graph.Position{X: rng.Float64() * 800, Y: rng.Float64() * 600}
		g.Nodes = append(g.Nodes, node(fmt.Sprintf("n%d", i), p))
		if i > 0 {
			parent := rng.Intn(i)
			g.Edges = append(g.Edges, graph.Edge{
				ID:     fmt.Sprintf("t%d", i),
				Source: fmt.Sprintf("n%d", parent),
				Target: fmt.Sprintf("n%d", i),
			})
		}
	}
	for k := 0; k < n/4; k++ {
		a, b := rng.Intn(n), rng.Intn(n)
		g.Edges = append(g.Edges, graph.Edge{
			ID:     fmt.Sprintf("x%d", k),
			Source: fmt.Sprintf("n%d", a),
			Target: fmt.Sprintf("n%d", b),
		})
	}
	return g
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"negative iterations", Options{Iterations: -1}, true},
		{"max iterations", Options{Iterations: MaxIterations}, false},
		{"too many iterations", Options{Iterations: 1_000_000_000}, true},
		{"too many collision passes", Options{CollisionIterations: MaxCollisionIterations + 1}, true},
		{"bad velocity decay", Options{VelocityDecay: 1.5}, true},
		{"inverted charge range", Options{ChargeDistanceMin: 800, ChargeDistanceMax: 100}, true},
		{"nan center", Options{Center: graph.Position{X: math.NaN()}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
