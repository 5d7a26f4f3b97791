// Package api serves the document engine over HTTP.
//
// Routes:
//
//	GET    /healthz                  liveness and build info
//	GET    /catalog                  loaded catalog summary
//	POST   /parse                    parse one literal against a parameter
//	POST   /document                 assemble and emit a graph as TOML
//	POST   /preview?format=dot|svg|png   node-link diagram of a graph
//	GET    /sessions                 list stored sessions
//	POST   /sessions                 create a session
//	GET    /sessions/{id}            fetch a session graph
//	PUT    /sessions/{id}            replace a session graph
//	DELETE /sessions/{id}            delete a session
//	GET    /sessions/{id}/document   emit a stored session
//
// JSON replies use the envelope {"success", "data", "error", "code"}.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tuigraph/pkg/cache"
	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/observability"
	"github.com/matzehuels/tuigraph/pkg/session"
)

const maxBodyBytes = 4 << 20

// Server holds the dependencies of the HTTP handlers. The catalog is shared
// read-only across requests.
type Server struct {
	catalog *catalog.Catalog
	store   session.Store
	logger  *log.Logger
	renders cache.Cache
}

// New creates a server. store may be nil, in which case the session routes
// answer UNSUPPORTED.
func New(cat *catalog.Catalog, store session.Store, logger *log.Logger) *Server {
	if cat == nil {
		cat = catalog.Empty()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{catalog: cat, store: store, logger: logger, renders: cache.NewNullCache()}
}

// WithRenderCache caches SVG and PNG previews in c.
func (s *Server) WithRenderCache(c cache.Cache) *Server {
	s.renders = c
	return s
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors)

	r.Get("/healthz", s.handleHealth)
	r.Get("/catalog", s.handleCatalog)
	r.Post("/parse", s.handleParse)
	r.Post("/document", s.handleDocument)
	r.Post("/preview", s.handlePreview)

	r.Route("/sessions", func(r chi.Router) {
		r.Use(s.requireStore)
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Put("/", s.handlePutSession)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/document", s.handleSessionDocument)
		})
	})
	return r
}

// requestLogger logs each request through the charm logger and reports it
// to the HTTP hooks.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), time.Since(start))

		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
