// Package httpapi is the query front-end of spec §1/§6: a chi router
// exposing a single-journey route endpoint and read-only network
// inspection endpoints, generalized from the teacher's
// internal/handler/transport_handler.go + main.go wiring.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/chairemobilite/trrouting-go/internal/csa"
	"github.com/chairemobilite/trrouting-go/internal/network"
)

// Server bundles the network and the per-request worker pool the handlers
// draw from (spec §5: one Scratch per concurrent request, never shared).
type Server struct {
	net     *network.Network
	workers *WorkerPool
	oracle  csa.WalkOracle
	timeout time.Duration
}

func NewServer(net *network.Network, workers *WorkerPool, oracle csa.WalkOracle, queryTimeout time.Duration) *Server {
	return &Server{net: net, workers: workers, oracle: oracle, timeout: queryTimeout}
}

// Router builds the chi router: the teacher's middleware stack
// (Logger/Recoverer/Timeout) plus permissive CORS, then the versioned API
// routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"trrouting-go"}`))
	})
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/nodes", s.handleListNodes)
		r.Get("/lines", s.handleListLines)
		r.Get("/scenarios", s.handleListScenarios)
		r.Get("/route", s.handleRoute)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.net.Nodes)
}

func (s *Server) handleListLines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.net.Lines)
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.net.Scenarios)
}
