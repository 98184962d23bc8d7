// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	handler "github.com/newthinker/datahub/internal/api/handler/api"
	"github.com/newthinker/datahub/internal/api/middleware"
	"github.com/newthinker/datahub/internal/metrics"
	"github.com/newthinker/datahub/internal/unified"
	"go.uber.org/zap"
)

// Server represents the HTTP server for DataHub
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	deps       Dependencies
}

// Config holds server configuration
type Config struct {
	Host string
	Port int
	// APIKey protects /api/v1. Empty disables auth.
	APIKey      string
	MetricsPath string
}

// Dependencies holds what the handlers serve.
type Dependencies struct {
	Service *unified.Service
	Metrics *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Service == nil {
		return nil, fmt.Errorf("server requires a data service")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger.Named("api"),
		mux:    mux,
		deps:   deps,
	}
	s.setupRoutes(cfg)

	var h http.Handler = mux
	h = metrics.HTTPMiddleware(deps.Metrics, metricsPath(cfg))(h)
	h = metrics.LoggingMiddleware(s.logger)(h)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	data := handler.NewDataHandler(s.deps.Service)
	sources := handler.NewSourcesHandler(s.deps.Service)
	analysis := handler.NewAnalysisHandler(s.deps.Service)

	v1 := http.NewServeMux()
	v1.HandleFunc("GET /api/v1/news", data.News)
	v1.HandleFunc("GET /api/v1/profile", data.Profile)
	v1.HandleFunc("GET /api/v1/health", sources.Health)
	v1.HandleFunc("GET /api/v1/status", sources.Status)
	v1.HandleFunc("GET /api/v1/sources", sources.Sources)
	v1.HandleFunc("GET /api/v1/compat", sources.Compat)
	v1.HandleFunc("GET /api/v1/analyze", analysis.Analyze)

	s.mux.Handle("/api/v1/", middleware.APIKeyAuth(cfg.APIKey)(v1))
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if s.deps.Metrics != nil {
		s.mux.Handle("GET "+metricsPath(cfg), s.deps.Metrics.Handler())
	}
}

func metricsPath(cfg Config) string {
	if cfg.MetricsPath == "" {
		return "/metrics"
	}
	return cfg.MetricsPath
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth is the unauthenticated liveness probe. Source health is
// under /api/v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
