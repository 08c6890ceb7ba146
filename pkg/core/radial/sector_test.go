package radial

import (
	"math"
	"testing"
)

const eps = 1e-9

// weightedTree: root R with children X (three leaves) and Y (one leaf).
func weightedTree() *Tree {
	ids := []string{"R", "X", "Y", "x1", "x2", "x3"}
	adj := BuildAdjacency(ids, edges(
		[2]string{"R", "X"}, [2]string{"R", "Y"},
		[2]string{"X", "x1"}, [2]string{"X", "x2"}, [2]string{"X", "x3"},
	))
	return ExtractTree(adj, ids, "R", nil)
}

func TestWeights(t *testing.T) {
	w := Weights(weightedTree())

	want := map[string]int{"R": 4, "X": 3, "Y": 1, "x1": 1, "x2": 1, "x3": 1}
	for id, n := range want {
		if w[id] != n {
			t.Errorf("weight[%s] = %d, want %d", id, w[id], n)
		}
	}
}

func TestSectors_ProportionalSpan(t *testing.T) {
	tree := weightedTree()
	s := Sectors(tree, Weights(tree))

	if ratio := s["X"].Span() / s["Y"].Span(); math.Abs(ratio-3) > eps {
		t.Errorf("span(X)/span(Y) = %v, want 3", ratio)
	}
}

func TestSectors_AdjacentAndCovering(t *testing.T) {
	tree := weightedTree()
	s := Sectors(tree, Weights(tree))

	root := s["R"]
	if root.Start != StartAngle || math.Abs(root.Span()-2*math.Pi) > eps {
		t.Errorf("root sector = %+v, want [-π/2, 3π/2)", root)
	}
	if s["X"].Start != root.Start {
		t.Errorf("X.Start = %v, want %v", s["X"].Start, root.Start)
	}
	if s["X"].End != s["Y"].Start {
		t.Errorf("X.End = %v, Y.Start = %v; want equal", s["X"].End, s["Y"].Start)
	}
	if s["Y"].End != root.End {
		t.Errorf("Y.End = %v, want %v", s["Y"].End, root.End)
	}

	// Grandchildren tile X.
	if s["x1"].Start != s["X"].Start || s["x3"].End != s["X"].End {
		t.Error("children of X should cover X exactly")
	}
	for _, id := range []string{"x1", "x2", "x3"} {
		if math.Abs(s[id].Span()-s["X"].Span()/3) > eps {
			t.Errorf("span(%s) = %v, want %v", id, s[id].Span(), s["X"].Span()/3)
		}
	}
}

func TestRingRadius(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		depth int
		want  float64
	}{
		{0, 0},
		{1, opts.RingStart},
		{2, opts.RingStart + opts.RingGap},
		{4, opts.RingStart + 3*opts.RingGap},
	}
	for _, tt := range tests {
		if got := RingRadius(tt.depth, opts); got != tt.want {
			t.Errorf("RingRadius(%d) = %v, want %v", tt.depth, got, tt.want)
		}
	}
}

func TestTargets(t *testing.T) {
	opts := DefaultOptions()
	tree := weightedTree()
	targets := Targets(tree, opts)

	if targets["R"].Position != opts.Center {
		t.Errorf("root target = %v, want center", targets["R"].Position)
	}
	for id, tg := range targets {
		if id == "R" {
			continue
		}
		d := tg.Position.Distance(opts.Center)
		if math.Abs(d-RingRadius(tree.Depth[id], opts)) > 1e-6 {
			t.Errorf("target %s at radius %v, want %v", id, d, RingRadius(tree.Depth[id], opts))
		}
	}
}

func TestTargets_DisconnectedSpread(t *testing.T) {
	ids := []string{"r", "a", "x", "y"}
	adj := BuildAdjacency(ids, edges([2]string{"r", "a"}))
	tree := ExtractTree(adj, ids, "r", nil)
	opts := DefaultOptions()

	targets := Targets(tree, opts)

	wantR := RingRadius(tree.MaxDepth+1, opts)
	if targets["x"].Radius != wantR || targets["y"].Radius != wantR {
		t.Errorf("disconnected radii = %v, %v; want %v", targets["x"].Radius, targets["y"].Radius, wantR)
	}
	if got := targets["x"].Angle; math.Abs(got-(StartAngle+math.Pi/2)) > eps {
		t.Errorf("angle(x) = %v, want %v", got, StartAngle+math.Pi/2)
	}
	if got := targets["y"].Angle; math.Abs(got-(StartAngle+3*math.Pi/2)) > eps {
		t.Errorf("angle(y) = %v, want %v", got, StartAngle+3*math.Pi/2)
	}
}
