package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/rose/pkg/errors"
	"github.com/matzehuels/rose/pkg/graph"
	"github.com/matzehuels/rose/pkg/storage"
)

// testCLI returns a CLI whose config keeps state in a temp dir and caches
// nothing.
func testCLI(t *testing.T) (*CLI, string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := fmt.Sprintf("[storage]\nbackend = \"file\"\ndir = %q\n\n[cache]\nbackend = \"none\"\n", dir)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "")

	c := New(io.Discard, LogInfo)
	c.ConfigPath = cfgPath
	c.EnvFiles = []string{filepath.Join(dir, "missing.env")}
	return c, dir
}

func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTestGraph(t *testing.T, dir string) string {
	t.Helper()
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "r", Data: graph.WordData{Word: "rose"}},
			{ID: "t", Position: graph.Position{X: 400, Y: 100}, Data: graph.WordData{Word: "thorn"}},
			{ID: "p", Position: graph.Position{X: 600, Y: 300}, Data: graph.WordData{Word: "petal"}},
		},
		Edges: []graph.Edge{
			{ID: "r-t", Source: "r", Target: "t", Data: &graph.EdgeData{Label: "has"}},
			{ID: "r-p", Source: "r", Target: "p"},
		},
	}
	path := filepath.Join(dir, "graph.json")
	if err := graph.WriteGraphFile(g, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLayoutCommand(t *testing.T) {
	c, dir := testCLI(t)
	input := writeTestGraph(t, dir)

	if _, err := execute(t, c, "layout", input, "--ring-gap", "200"); err != nil {
		t.Fatalf("layout error: %v", err)
	}

	out, err := graph.ReadGraphFile(filepath.Join(dir, "graph.layout.json"))
	if err != nil {
		t.Fatalf("read layout output: %v", err)
	}
	if len(out.Nodes) != 3 {
		t.Fatalf("layout output has %d nodes, want 3", len(out.Nodes))
	}
	root, _ := out.Node("r")
	if root.Position != (graph.Position{X: 400, Y: 300}) {
		t.Errorf("root = %v, want (400, 300)", root.Position)
	}
}

func TestRenderCommand_DOTAndJSON(t *testing.T) {
	c, dir := testCLI(t)
	input := writeTestGraph(t, dir)

	if _, err := execute(t, c, "render", input, "-f", "dot,json", "--relations"); err != nil {
		t.Fatalf("render error: %v", err)
	}

	dot, err := os.ReadFile(filepath.Join(dir, "graph.dot"))
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.Contains(string(dot), "has") {
		t.Error("DOT output should carry the relation label")
	}
	if _, err := graph.ReadGraphFile(filepath.Join(dir, "graph.rendered.json")); err != nil {
		t.Errorf("json output unreadable: %v", err)
	}
}

func TestRenderCommand_InvalidFormat(t *testing.T) {
	c, dir := testCLI(t)
	input := writeTestGraph(t, dir)

	_, err := execute(t, c, "render", input, "-f", "pdf")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("render -f pdf error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestNetworkCommands(t *testing.T) {
	c, dir := testCLI(t)

	if _, err := execute(t, c, "network", "create", "Garden"); err != nil {
		t.Fatalf("network create: %v", err)
	}
	if _, err := execute(t, c, "network", "rename", "garden", "Orchard", "Trees"); err != nil {
		t.Fatalf("network rename: %v", err)
	}
	if _, err := execute(t, c, "network", "background", "fruit", "trees"); err != nil {
		t.Fatalf("network background: %v", err)
	}

	store, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	active := st.Active()
	if active.Name != "Orchard Trees" || active.Background != "fruit trees" {
		t.Errorf("active = %q/%q, want Orchard Trees/fruit trees", active.Name, active.Background)
	}
	if len(st.Networks) != 2 {
		t.Errorf("networks = %d, want 2", len(st.Networks))
	}

	if _, err := execute(t, c, "network", "delete", "Orchard Trees"); err != nil {
		t.Fatalf("network delete: %v", err)
	}
	if _, err := execute(t, c, "network", "use", "nope"); !errors.Is(err, errors.ErrCodeNetworkNotFound) {
		t.Errorf("network use nope error = %v, want %s", err, errors.ErrCodeNetworkNotFound)
	}
}

func TestWordAdd_RequiresAPIKey(t *testing.T) {
	c, _ := testCLI(t)

	_, err := execute(t, c, "word", "add", "rose")
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("word add without key error = %v, want %s", err, errors.ErrCodeUnauthorized)
	}
}

func TestCompletionCommand(t *testing.T) {
	c, _ := testCLI(t)

	out, err := execute(t, c, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the command name")
	}
}
