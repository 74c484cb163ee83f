package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"vbtlab/app"
	"vbtlab/internal"
	"vbtlab/internal/synth"
	"vbtlab/ports"
)

// Server exposes dataset generation and stored-dataset access over HTTP.
type Server struct {
	router   *chi.Mux
	gen      *app.GenerationService
	repo     ports.DatasetRepository
	defaults synth.Config
	port     string
	logger   *internal.Logger
}

// Config holds server configuration
type Config struct {
	Port     string
	Defaults synth.Config
}

// NewServer creates a new API server. The repository may be nil, in which
// case persistence endpoints respond with 503.
func NewServer(config Config, gen *app.GenerationService, repo ports.DatasetRepository, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:   chi.NewRouter(),
		gen:      gen,
		repo:     repo,
		defaults: config.Defaults,
		port:     config.Port,
		logger:   logger.Scoped("api"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// Generation
	s.router.Post("/api/datasets", s.handleGenerateDataset)

	// Stored datasets
	s.router.Get("/api/datasets", s.handleListManifests)
	s.router.Get("/api/datasets/{id}", s.handleGetManifest)
	s.router.Get("/api/datasets/{id}/quality", s.handleGetQualityReport)
	s.router.Get("/api/datasets/{id}/participants", s.handleListParticipants)
	s.router.Get("/api/datasets/{id}/measurements", s.handleListMeasurements)
	s.router.Post("/api/datasets/{id}/split", s.handlePlanSplit)
	s.router.Delete("/api/datasets/{id}", s.handleDeleteDataset)

	// Protocol documents
	s.router.Get("/api/protocols/collection", s.handleCollectionProtocol)
	s.router.Get("/api/protocols/ml-training", s.handleMLTrainingProtocol)
}

// Router returns the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := ":" + s.port
	s.logger.Info("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.router)
}
