package graph

import (
	"bytes"
	"errors"
	"io/fs"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func sample() Graph {
	expl := "a flower"
	return Graph{
		Nodes: []Node{
			{ID: "a", Type: NodeType, Position: Position{X: 400, Y: 300}, Data: WordData{Word: "rose", Explanation: &expl}},
			{ID: "b", Type: NodeType, Position: Position{X: 400, Y: 120}, Data: WordData{Word: "thorn"}},
		},
		Edges: []Edge{
			{ID: "a-b", Source: "a", Target: "b", Data: &EdgeData{Label: "guards"}},
		},
	}
}

func TestMarshalGraphPreservesOrder(t *testing.T) {
	g := sample()
	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	if !bytes.Contains(data, []byte(`"isLoading"`)) {
		t.Error("payload should use canvas field names")
	}

	back, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}
	if len(back.Nodes) != 2 || back.Nodes[0].ID != "a" {
		t.Fatalf("root not preserved: %+v", back.Nodes)
	}
	if back.Edges[0].Label() != "guards" {
		t.Errorf("label = %q, want guards", back.Edges[0].Label())
	}
}

func TestMarshalGraphEmpty(t *testing.T) {
	data, err := MarshalGraph(Graph{})
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	if !strings.Contains(string(data), `"nodes": []`) {
		t.Errorf("empty graph should encode empty arrays, got %s", data)
	}
}

func TestUnmarshalGraphInvalid(t *testing.T) {
	if _, err := UnmarshalGraph([]byte("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.json")
	if err := WriteGraphFile(sample(), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if n, ok := g.NodeByWord("thorn"); !ok || n.ID != "b" {
		t.Errorf("NodeByWord(thorn) = %v, %v", n, ok)
	}
}

func TestReadGraphFileMissing(t *testing.T) {
	_, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := sample()
	c := g.Clone()
	*c.Nodes[0].Data.Explanation = "changed"
	c.Edges[0].Data.Label = "changed"
	c.Nodes[1].Position.X = 0

	if *g.Nodes[0].Data.Explanation != "a flower" {
		t.Error("Clone shares explanation pointer")
	}
	if g.Edges[0].Label() != "guards" {
		t.Error("Clone shares edge data")
	}
	if g.Nodes[1].Position.X != 400 {
		t.Error("Clone shares node slice")
	}
}

func TestWithPositions(t *testing.T) {
	g := sample()
	out := g.WithPositions(map[string]Position{
		"b":     {X: 1, Y: 2},
		"ghost": {X: 9, Y: 9},
	})
	if out.Nodes[1].Position != (Position{X: 1, Y: 2}) {
		t.Errorf("b position = %v", out.Nodes[1].Position)
	}
	if out.Nodes[0].Position != g.Nodes[0].Position {
		t.Error("a should keep its position")
	}
	if len(out.Nodes) != 2 {
		t.Error("unknown ids must not add nodes")
	}
	if g.Nodes[1].Position.X != 400 {
		t.Error("input must not be mutated")
	}
}

func TestHasEdge(t *testing.T) {
	g := sample()
	if !g.HasEdge("b", "a") {
		t.Error("HasEdge should ignore direction")
	}
	if g.HasEdge("a", "c") {
		t.Error("HasEdge(a, c) should be false")
	}
}

func TestPositionIsFinite(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"finite", Position{X: 1, Y: 2}, true},
		{"nan", Position{X: math.NaN(), Y: 0}, false},
		{"inf", Position{X: 0, Y: math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.IsFinite(); got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRootEmpty(t *testing.T) {
	if _, ok := (Graph{}).Root(); ok {
		t.Error("empty graph has no root")
	}
}
