package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rose/pkg/core/radial"
	"github.com/matzehuels/rose/pkg/errors"
	"github.com/matzehuels/rose/pkg/generate"
	"github.com/matzehuels/rose/pkg/graph"
	"github.com/matzehuels/rose/pkg/network"
	"github.com/matzehuels/rose/pkg/pipeline"
	"github.com/matzehuels/rose/pkg/storage"
)

type stubGenerator struct {
	related map[string][]generate.Concept
}

func (g stubGenerator) Related(_ context.Context, req generate.RelatedRequest) ([]generate.Concept, error) {
	return g.related[req.Word], nil
}

func (g stubGenerator) Explain(_ context.Context, req generate.ExplainRequest) (string, error) {
	return "about " + req.Word, nil
}

func newTestServer(t *testing.T, gen generate.Generator) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return startServer(t, network.NewService(storage.NewMemoryStore(), gen, nil, logger))
}

func startServer(t *testing.T, svc *network.Service) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(newServer(svc, svc.Logger).routes())
	t.Cleanup(ts.Close)
	return ts
}

func roseGenerator() generate.Generator {
	return stubGenerator{related: map[string][]generate.Concept{
		"rose": {
			{Word: "thorn", Relation: "has", Gloss: "a sharp point"},
			{Word: "petal", Relation: "has"},
		},
	}}
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s = %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func TestServe_Health(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := do(t, ts, http.MethodGet, "/healthz", nil)
	wantStatus(t, resp, http.StatusOK)
}

func TestServe_WordLifecycle(t *testing.T) {
	ts := newTestServer(t, roseGenerator())

	resp := do(t, ts, http.MethodPost, "/api/words", addWordRequest{Word: "rose"})
	wantStatus(t, resp, http.StatusCreated)
	added := decode[addWordResponse](t, resp)
	if len(added.Network.Nodes) != 1 {
		t.Fatalf("nodes after add = %d, want 1", len(added.Network.Nodes))
	}
	root := added.Network.Nodes[0]
	if root.Position != (graph.Position{X: radial.DefaultCenterX, Y: radial.DefaultCenterY}) {
		t.Errorf("root position = %v, want layout center", root.Position)
	}
	if root.Data.Explanation == nil || *root.Data.Explanation != "about rose" {
		t.Errorf("root explanation = %v, want \"about rose\"", root.Data.Explanation)
	}

	resp = do(t, ts, http.MethodPost, "/api/words/rose/expand", map[string]string{"direction": "botany"})
	wantStatus(t, resp, http.StatusOK)
	expanded := decode[expandResponse](t, resp)
	if len(expanded.Added) != 2 {
		t.Fatalf("added = %v, want 2 concepts", expanded.Added)
	}
	if len(expanded.Network.Edges) != 2 {
		t.Errorf("edges = %d, want 2", len(expanded.Network.Edges))
	}

	resp = do(t, ts, http.MethodPost, "/api/organize", nil)
	wantStatus(t, resp, http.StatusOK)
	organized := decode[network.Network](t, resp)
	pos := organized.Graph().Positions()
	if pos[root.ID] != root.Position {
		t.Errorf("organized root = %v, want %v", pos[root.ID], root.Position)
	}
}

func TestServe_ExpandWithoutBody(t *testing.T) {
	ts := newTestServer(t, roseGenerator())
	wantStatus(t, do(t, ts, http.MethodPost, "/api/words", addWordRequest{Word: "rose"}), http.StatusCreated)

	resp := do(t, ts, http.MethodPost, "/api/words/rose/expand", nil)
	wantStatus(t, resp, http.StatusOK)
}

func TestServe_NetworkLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := do(t, ts, http.MethodPost, "/api/networks", nameRequest{Name: "Garden"})
	wantStatus(t, resp, http.StatusCreated)
	created := decode[network.Network](t, resp)

	resp = do(t, ts, http.MethodPatch, "/api/networks/"+created.ID, nameRequest{Name: "Orchard"})
	wantStatus(t, resp, http.StatusNoContent)

	resp = do(t, ts, http.MethodPut, "/api/background", map[string]string{"background": "fruit trees"})
	wantStatus(t, resp, http.StatusNoContent)

	resp = do(t, ts, http.MethodGet, "/api/networks/active", nil)
	wantStatus(t, resp, http.StatusOK)
	active := decode[network.Network](t, resp)
	if active.Name != "Orchard" || active.Background != "fruit trees" {
		t.Errorf("active = %q/%q, want Orchard/fruit trees", active.Name, active.Background)
	}

	resp = do(t, ts, http.MethodGet, "/api/networks", nil)
	wantStatus(t, resp, http.StatusOK)
	st := decode[network.State](t, resp)
	if len(st.Networks) != 2 || st.ActiveID != created.ID {
		t.Fatalf("state = %d networks, active %s; want 2, %s", len(st.Networks), st.ActiveID, created.ID)
	}

	other := st.Networks[0].ID
	wantStatus(t, do(t, ts, http.MethodPost, "/api/networks/"+other+"/activate", nil), http.StatusNoContent)
	wantStatus(t, do(t, ts, http.MethodDelete, "/api/networks/"+created.ID, nil), http.StatusNoContent)

	st = decode[network.State](t, do(t, ts, http.MethodGet, "/api/networks", nil))
	if len(st.Networks) != 1 || st.ActiveID != other {
		t.Errorf("after delete: %d networks, active %s; want 1, %s", len(st.Networks), st.ActiveID, other)
	}
}

func TestServe_Errors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   errors.Code
	}{
		{"unknown network", http.MethodPost, "/api/networks/missing/activate", nil, http.StatusNotFound, errors.ErrCodeNetworkNotFound},
		{"bad name", http.MethodPost, "/api/networks", nameRequest{Name: strings.Repeat("x", 500)}, http.StatusBadRequest, errors.ErrCodeInvalidNetwork},
		{"unknown field", http.MethodPost, "/api/place", map[string]any{"parent": map[string]float64{"x": 1, "y": 1}, "bogus": 1}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad index", http.MethodPost, "/api/place", placeRequest{Index: 3, Total: 2}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"no generator", http.MethodPost, "/api/words", addWordRequest{Word: "rose"}, http.StatusNotImplemented, errors.ErrCodeUnsupported},
		{"bad format", http.MethodPost, "/api/render?format=pdf", layoutRequest{}, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, tt.method, tt.path, tt.body)
			wantStatus(t, resp, tt.status)
			if got := decode[errorResponse](t, resp); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
}

func TestServe_Layout(t *testing.T) {
	ts := newTestServer(t, nil)
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "r", Data: graph.WordData{Word: "rose"}},
			{ID: "t", Position: graph.Position{X: 400, Y: 100}, Data: graph.WordData{Word: "thorn"}},
		},
		Edges: []graph.Edge{{ID: "r-t", Source: "r", Target: "t"}},
	}

	resp := do(t, ts, http.MethodPost, "/api/layout", layoutRequest{Graph: g})
	wantStatus(t, resp, http.StatusOK)
	got := decode[layoutResponse](t, resp)

	pos := got.Positions()
	center := graph.Position{X: radial.DefaultCenterX, Y: radial.DefaultCenterY}
	if pos["r"] != center {
		t.Errorf("root = %v, want %v", pos["r"], center)
	}
	if d := pos["t"].Distance(center); d < radial.DefaultClearance {
		t.Errorf("child is %.1f from root, want >= %v", d, radial.DefaultClearance)
	}
}

func TestServe_LayoutKeepsConfiguredOptions(t *testing.T) {
	svc := network.NewService(storage.NewMemoryStore(), nil, nil, nil)
	svc.Layout.Center = graph.Position{X: 50, Y: 60}
	ts := startServer(t, svc)
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "r"}, {ID: "t"}},
		Edges: []graph.Edge{{ID: "r-t", Source: "r", Target: "t"}},
	}

	resp := do(t, ts, http.MethodPost, "/api/layout", layoutRequest{Graph: g, Layout: json.RawMessage(`{"iterations": 20}`)})
	wantStatus(t, resp, http.StatusOK)
	got := decode[layoutResponse](t, resp)

	if root := got.Positions()["r"]; root != svc.Layout.Center {
		t.Errorf("root = %v, want configured center %v", root, svc.Layout.Center)
	}
}

func TestServe_LayoutLimits(t *testing.T) {
	ts := newTestServer(t, nil)
	small := graph.Graph{Nodes: []graph.Node{{ID: "r"}}}
	big := graph.Graph{Nodes: make([]graph.Node, pipeline.MaxNodes+1)}
	for i := range big.Nodes {
		big.Nodes[i].ID = fmt.Sprintf("n%d", i)
	}

	tests := []struct {
		name string
		path string
		body any
		code errors.Code
	}{
		{"iteration budget", "/api/layout",
			layoutRequest{Graph: small, Layout: json.RawMessage(`{"iterations": 1000000000}`)}, errors.ErrCodeInvalidOptions},
		{"collision budget", "/api/render?format=dot",
			renderRequest{layoutRequest: layoutRequest{Graph: small, Layout: json.RawMessage(`{"collision_iterations": 100000}`)}}, errors.ErrCodeInvalidOptions},
		{"unknown layout field", "/api/layout",
			layoutRequest{Graph: small, Layout: json.RawMessage(`{"gravity": 1}`)}, errors.ErrCodeInvalidOptions},
		{"too many nodes", "/api/layout", layoutRequest{Graph: big}, errors.ErrCodeInvalidGraph},
		{"too many nodes without layout", "/api/render?format=dot",
			renderRequest{layoutRequest: layoutRequest{Graph: big}, NoLayout: true}, errors.ErrCodeInvalidGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, http.MethodPost, tt.path, tt.body)
			wantStatus(t, resp, http.StatusBadRequest)
			if got := decode[errorResponse](t, resp); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
}

func TestServe_Place(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := do(t, ts, http.MethodPost, "/api/place", placeRequest{Parent: graph.Position{X: 400, Y: 300}, Total: 1})
	wantStatus(t, resp, http.StatusOK)
	got := decode[graph.Position](t, resp)
	if got != (graph.Position{X: 400, Y: 120}) {
		t.Errorf("place = %v, want (400, 120)", got)
	}
}

func TestServe_RenderDOT(t *testing.T) {
	ts := newTestServer(t, nil)
	g := graph.Graph{Nodes: []graph.Node{{ID: "r", Data: graph.WordData{Word: "rose"}}}}

	resp := do(t, ts, http.MethodPost, "/api/render?format=dot", renderRequest{layoutRequest: layoutRequest{Graph: g}})
	wantStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "rose") {
		t.Errorf("DOT output should mention the word, got %s", body)
	}
}
