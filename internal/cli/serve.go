package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rose/pkg/core/radial"
	"github.com/matzehuels/rose/pkg/errors"
	"github.com/matzehuels/rose/pkg/graph"
	"github.com/matzehuels/rose/pkg/network"
	"github.com/matzehuels/rose/pkg/pipeline"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// serveCommand creates the serve command, which exposes network operations
// as a JSON API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and network operations over HTTP",
		Long: `Serve the layout and network operations over HTTP.

Routes:
  GET    /healthz
  POST   /api/layout                  lay out a posted graph
  POST   /api/place                   place a new concept around its parent
  POST   /api/render?format=svg       lay out and render a posted graph
  GET    /api/networks                full state
  POST   /api/networks                create a network
  GET    /api/networks/active         the active network
  PATCH  /api/networks/{id}           rename
  DELETE /api/networks/{id}           delete
  POST   /api/networks/{id}/activate  switch
  POST   /api/networks/{id}/seen      clear new-word highlights
  PUT    /api/background              set the active network's background
  POST   /api/words                   add a word
  POST   /api/words/{ref}/expand      expand a word
  POST   /api/organize                lay out the active network`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			svc, closeSvc, err := c.newService(ctx, true)
			generates := err == nil
			if err != nil {
				c.Logger.Warn("concept generation disabled", "error", errors.UserMessage(err))
				svc, closeSvc, err = c.newService(ctx, false)
				if err != nil {
					return err
				}
			}
			defer closeSvc()

			srv := newServer(svc, c.Logger)
			srv.generates = generates
			return srv.listen(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// server handles the HTTP API.
type server struct {
	svc       *network.Service
	logger    *log.Logger
	generates bool
}

func newServer(svc *network.Service, logger *log.Logger) *server {
	return &server{svc: svc, logger: logger, generates: svc.Generator != nil}
}

// listen serves until ctx is cancelled, then shuts down gracefully.
func (s *server) listen(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpSrv.ListenAndServe()
	}()
	printSuccess("Listening on %s", StyleHighlight.Render(addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/place", s.handlePlace)
		r.Post("/render", s.handleRender)

		r.Get("/networks", s.handleState)
		r.Post("/networks", s.handleCreate)
		r.Get("/networks/active", s.handleActive)
		r.Patch("/networks/{id}", s.handleRename)
		r.Delete("/networks/{id}", s.handleDelete)
		r.Post("/networks/{id}/activate", s.handleActivate)
		r.Post("/networks/{id}/seen", s.handleSeen)
		r.Put("/background", s.handleBackground)

		r.Post("/words", s.handleAddWord)
		r.Post("/words/{ref}/expand", s.handleExpand)
		r.Post("/organize", s.handleOrganize)
	})

	return r
}

// logRequests attaches a request-scoped logger and logs each response.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), l)))

		l.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// =============================================================================
// Graph endpoints
// =============================================================================

type layoutRequest struct {
	graph.Graph
	// Layout holds radial.Options fields to override; see options.
	Layout  json.RawMessage `json:"layout,omitempty"`
	Refresh bool            `json:"refresh,omitempty"`
}

type layoutResponse struct {
	graph.Graph
	Cached bool `json:"cached"`
}

// options decodes the request's layout fields on top of the service's
// layout, so fields the request leaves out keep their configured value.
func (s *server) options(req layoutRequest) (pipeline.Options, error) {
	layout := s.svc.Layout
	if len(req.Layout) > 0 {
		dec := json.NewDecoder(bytes.NewReader(req.Layout))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&layout); err != nil {
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidOptions, err, "invalid layout options: %v", err)
		}
	}
	return pipeline.Options{Layout: layout, Refresh: req.Refresh}, nil
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := s.options(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, hit, err := s.svc.Runner.LayoutWithCacheInfo(r.Context(), req.Graph, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{Graph: g, Cached: hit})
}

type placeRequest struct {
	Parent graph.Position   `json:"parent"`
	Placed []graph.Position `json:"placed"`
	Index  int              `json:"index"`
	Total  int              `json:"total"`
}

func (s *server) handlePlace(w http.ResponseWriter, r *http.Request) {
	req := placeRequest{Total: 1}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !req.Parent.IsFinite() {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "parent position must be finite"))
		return
	}
	if req.Total < 1 || req.Index < 0 || req.Index >= req.Total {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "index %d out of range for total %d", req.Index, req.Total))
		return
	}
	pos := radial.PlaceSibling(req.Parent, req.Placed, req.Index, req.Total, s.svc.Placement)
	writeJSON(w, http.StatusOK, pos)
}

type renderRequest struct {
	layoutRequest
	Relations bool `json:"relations,omitempty"`
	Detailed  bool `json:"detailed,omitempty"`
	NoLayout  bool `json:"noLayout,omitempty"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}

	var req renderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := s.options(req.layoutRequest)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}
	opts.ShowRelations = req.Relations
	opts.Detailed = req.Detailed

	var artifacts map[string][]byte
	if req.NoLayout {
		artifacts, err = s.svc.Runner.Render(r.Context(), req.Graph, opts)
	} else {
		var res *pipeline.Result
		if res, err = s.svc.Runner.Execute(r.Context(), req.Graph, opts); err == nil {
			artifacts = res.Artifacts
		}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// =============================================================================
// Network endpoints
// =============================================================================

type nameRequest struct {
	Name string `json:"name"`
}

func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.State(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handleActive(w http.ResponseWriter, r *http.Request) {
	net, err := s.svc.Active(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, net)
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	net, err := s.svc.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, net)
}

func (s *server) handleRename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Rename(r.Context(), id, req.Name); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.byID(w, r, s.svc.Delete)
}

func (s *server) handleActivate(w http.ResponseWriter, r *http.Request) {
	s.byID(w, r, s.svc.Switch)
}

func (s *server) handleSeen(w http.ResponseWriter, r *http.Request) {
	s.byID(w, r, s.svc.ClearNew)
}

// byID runs a network operation that only takes the {id} path parameter.
func (s *server) byID(w http.ResponseWriter, r *http.Request, op func(context.Context, string) error) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := op(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleBackground(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Background string `json:"background"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.SetBackground(r.Context(), req.Background); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Word endpoints
// =============================================================================

type addWordRequest struct {
	Word     string          `json:"word"`
	Position *graph.Position `json:"position,omitempty"`
}

type addWordResponse struct {
	ID      string          `json:"id"`
	Network network.Network `json:"network"`
}

func (s *server) handleAddWord(w http.ResponseWriter, r *http.Request) {
	if !s.requireGenerator(w, r) {
		return
	}
	var req addWordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Position != nil && !req.Position.IsFinite() {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "position must be finite"))
		return
	}

	ctx := r.Context()
	pos, err := freePosition(ctx, s.svc, req.Position)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := s.svc.AddWord(ctx, req.Word, pos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	net, err := s.svc.Active(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, addWordResponse{ID: id, Network: net})
}

type expandResponse struct {
	Added   []string        `json:"added"`
	Linked  []string        `json:"linked"`
	Network network.Network `json:"network"`
}

func (s *server) handleExpand(w http.ResponseWriter, r *http.Request) {
	if !s.requireGenerator(w, r) {
		return
	}
	ref := chi.URLParam(r, "ref")
	var req struct {
		Direction string `json:"direction"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	ctx := r.Context()
	res, err := s.svc.ExpandWord(ctx, ref, req.Direction)
	if err != nil {
		writeError(w, r, err)
		return
	}
	net, err := s.svc.Active(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expandResponse{
		Added:   nonNil(res.Added),
		Linked:  nonNil(res.Linked),
		Network: net,
	})
}

func (s *server) handleOrganize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.svc.Organize(ctx); err != nil {
		writeError(w, r, err)
		return
	}
	net, err := s.svc.Active(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, net)
}

func (s *server) requireGenerator(w http.ResponseWriter, r *http.Request) bool {
	if s.generates {
		return true
	}
	writeError(w, r, errors.New(errors.ErrCodeUnsupported, "concept generation is not configured"))
	return false
}

// =============================================================================
// Helpers
// =============================================================================

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to its HTTP status. Server-side failures are logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := chi.URLParam(r, name)
	if err := errors.ValidateID(id); err != nil {
		writeError(w, r, err)
		return "", false
	}
	return id, true
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
