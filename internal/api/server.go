package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/contractkit/playbookd/internal/analysis"
	"github.com/contractkit/playbookd/internal/config"
	"github.com/contractkit/playbookd/internal/pipeline"
)

// Server is the HTTP API server for playbookd.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	stats  *analysis.CallStats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(runner *pipeline.Runner, stats *analysis.CallStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		runner: runner,
		stats:  stats,
		log:    log,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// API endpoints. Auth is optional: with no key configured the
	// service runs open, matching a single-user deployment.
	r.Group(func(r chi.Router) {
		if s.cfg.PlaybookAPIKey != "" {
			r.Use(AuthMiddleware(s.cfg.PlaybookAPIKey, s.log))
		}

		r.Post("/api/upload", s.handleUpload)
		r.Post("/api/jobs/{jobID}/process", s.handleProcess)
		r.Get("/api/jobs/{jobID}/status", s.handleStatus)
		r.Get("/api/jobs/{jobID}/download", s.handleDownload)
		r.Get("/api/stats/analysis", s.handleAnalysisStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"provider": s.runner.Client().Provider(),
		"model":    s.runner.Client().Model(),
	})
}
