package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tuigraph/pkg/buildinfo"
	"github.com/matzehuels/tuigraph/pkg/cache"
	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/document"
	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/graph"
	"github.com/matzehuels/tuigraph/pkg/literal"
	"github.com/matzehuels/tuigraph/pkg/nodelink"
	"github.com/matzehuels/tuigraph/pkg/resolve"
	"github.com/matzehuels/tuigraph/pkg/session"
	"github.com/matzehuels/tuigraph/pkg/value"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"build":     buildinfo.Get(),
	})
}

type paramView struct {
	Type     string `json:"type"`
	Describe string `json:"describe"`
}

type typeView struct {
	Order  []string             `json:"order"`
	Params map[string]paramView `json:"params"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	types := make(map[string]typeView, len(s.catalog.Types))
	for _, name := range s.catalog.TypeNames() {
		def, _ := s.catalog.Type(name)
		tv := typeView{Order: def.ParamNames(), Params: map[string]paramView{}}
		for pname, p := range def.Params {
			tv.Params[pname] = paramView{Type: p.Kind.String(), Describe: p.Describe()}
		}
		types[name] = tv
	}
	tables := map[string]string{}
	for name, v := range s.catalog.ExtraTables() {
		lit, err := value.Literal(v)
		if err != nil {
			continue
		}
		tables[name] = lit
	}
	sendSuccess(w, map[string]any{
		"root":   s.catalog.Root(),
		"types":  types,
		"tables": tables,
		"lint":   catalog.Lint(s.catalog),
	})
}

type parseRequest struct {
	Type  string `json:"type"`
	Param string `json:"param"`
	Value string `json:"value"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendError(w, err)
		return
	}
	def, ok := s.catalog.Type(req.Type)
	if !ok {
		sendError(w, errs.New(errs.ErrCodeNotFound, "unknown type %q", req.Type))
		return
	}
	p, ok := def.Param(req.Param)
	if !ok {
		sendError(w, errs.New(errs.ErrCodeNotFound, "type %q has no parameter %q", req.Type, req.Param))
		return
	}
	v, err := literal.Parse(req.Value, p)
	if err != nil {
		sendError(w, err)
		return
	}
	lit, err := value.Literal(v)
	if err != nil {
		sendError(w, errs.Wrap(errs.ErrCodeRender, err, "format value"))
		return
	}
	data := map[string]any{
		"kind":    v.Kind().String(),
		"literal": lit,
	}
	if shaped, err := value.Literal(resolve.ApplyRender(v, p)); err == nil {
		data["emitted"] = shaped
	}
	if finite(v) {
		data["value"] = value.ToAny(v)
	}
	sendSuccess(w, data)
}

// finite reports whether v can be encoded as JSON.
func finite(v value.Value) bool {
	switch x := v.(type) {
	case value.Float:
		return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
	case value.List:
		for _, e := range x {
			if !finite(e) {
				return false
			}
		}
	case value.Table:
		for _, e := range x {
			if !finite(e) {
				return false
			}
		}
	}
	return true
}

func (s *Server) readGraph(w http.ResponseWriter, r *http.Request) (*graph.Graph, bool) {
	g := graph.New()
	if err := decodeJSON(w, r, g); err != nil {
		sendError(w, err)
		return nil, false
	}
	return g, true
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readGraph(w, r)
	if !ok {
		return
	}
	s.writeDocument(w, r, g)
}

func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, g *graph.Graph) {
	doc := document.Assemble(g, s.catalog)
	text, err := document.Emit(doc, s.catalog)
	if err != nil {
		sendError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "toml" {
		w.Header().Set("Content-Type", "application/toml")
		_, _ = w.Write([]byte(text))
		return
	}
	sendSuccess(w, map[string]any{
		"toml":     text,
		"records":  doc.Len(),
		"dangling": len(g.DanglingEdges()),
	})
}

// previewTTL bounds how long rendered previews stay cached.
const previewTTL = 24 * time.Hour

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readGraph(w, r)
	if !ok {
		return
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	dot := nodelink.ToDOT(g, s.catalog, nodelink.Options{Detailed: detailed})

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
	case "svg", "png":
		data, err := cache.GetOrRender(r.Context(), s.renders, cache.RenderKey(format, dot), previewTTL, func() ([]byte, error) {
			if format == "png" {
				return nodelink.RenderPNG(r.Context(), dot)
			}
			return nodelink.RenderSVG(r.Context(), dot)
		})
		if err != nil {
			sendError(w, errs.Wrap(errs.ErrCodeRender, err, "render %s", format))
			return
		}
		if format == "png" {
			w.Header().Set("Content-Type", "image/png")
		} else {
			w.Header().Set("Content-Type", "image/svg+xml")
		}
		_, _ = w.Write(data)
	default:
		sendError(w, errs.New(errs.ErrCodeUnsupported, "unsupported preview format %q", format))
	}
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			sendError(w, errs.New(errs.ErrCodeUnsupported, "no session store configured"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type sessionView struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Catalog   string       `json:"catalog,omitempty"`
	Output    string       `json:"output,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Graph     *graph.Graph `json:"graph"`
}

func viewOf(sess *session.Session) sessionView {
	return sessionView{
		ID:        sess.ID,
		Name:      sess.Name,
		Catalog:   sess.CatalogPath,
		Output:    sess.OutputPath,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		Graph:     sess.Graph,
	}
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		sendError(w, err)
		return
	}
	if list == nil {
		list = []session.Summary{}
	}
	sendSuccess(w, map[string]any{"sessions": list})
}

type createSessionRequest struct {
	Name  string       `json:"name"`
	Graph *graph.Graph `json:"graph,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendError(w, err)
		return
	}
	if err := errs.ValidateLabel(req.Name); err != nil {
		sendError(w, err)
		return
	}
	sess := session.New(req.Name, req.Graph)
	if err := s.store.Set(r.Context(), sess); err != nil {
		sendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, response{Success: true, Data: sess.Summary()})
}

func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	sendSuccess(w, viewOf(sess))
}

func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	g, ok := s.readGraph(w, r)
	if !ok {
		return
	}
	sess.Graph = g
	sess.Touch()
	if err := s.store.Set(r.Context(), sess); err != nil {
		sendError(w, err)
		return
	}
	sendSuccess(w, sess.Summary())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		sendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.writeDocument(w, r, sess.Graph)
}
