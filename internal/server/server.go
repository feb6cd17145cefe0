package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lazypower/condense/internal/reduce"
	"github.com/lazypower/condense/internal/store"
)

// Server is the condense HTTP API server. db is optional; map archive
// routes return 503 when it is nil.
type Server struct {
	db      *store.DB
	opts    reduce.Options
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server. opts are the default reduction options for
// requests that do not carry their own.
func New(db *store.DB, opts reduce.Options, version string) *Server {
	s := &Server{
		db:      db,
		opts:    opts,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/reduce", s.handleReduce)
		r.Post("/reconstruct", s.handleReconstruct)

		r.Get("/maps", s.handleListMaps)
		r.Get("/maps/{mapID}", s.handleGetMap)
		r.Delete("/maps/{mapID}", s.handleDeleteMap)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := false
	dbPath := ""
	if s.db != nil {
		dbPath = s.db.Path
		dbOK = s.db.Ping() == nil
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": dbPath,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
