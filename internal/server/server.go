package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tracelens/internal/clients/metrics"
	"tracelens/internal/clients/tracing"
	"tracelens/internal/config"
	"tracelens/internal/livequery"
	"tracelens/internal/orchestrator"
	"tracelens/internal/telemetry"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg    *config.Config
	srv    *http.Server
	cache  *livequery.Cache
	logger *slog.Logger
}

// New creates a new server instance
func New(cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	// Initialize backend clients
	tracingClient := tracing.NewClient(cfg.Tracing.URL, cfg.Tracing.Token, cfg.Tracing.GetTimeoutDuration(), logger)
	metricsClient := metrics.NewClient(cfg.Metrics.URL, cfg.Metrics.Token, cfg.Metrics.GetTimeoutDuration(), logger)

	// Initialize orchestrator and cache
	orch := orchestrator.New(tracingClient, metricsClient, logger)

	registry := prometheus.NewRegistry()
	cache := livequery.New(orch.Fetch, livequery.Options{
		Intervals: map[livequery.Kind]time.Duration{
			livequery.KindTraceList:       cfg.Cache.GetTraceRefreshDuration(),
			livequery.KindTrace:           cfg.Cache.GetTraceRefreshDuration(),
			livequery.KindAgentMetrics:    cfg.Cache.GetMetricsRefreshDuration(),
			livequery.KindWorkflowMetrics: cfg.Cache.GetMetricsRefreshDuration(),
		},
		Metrics: telemetry.New(registry),
	})

	// Create handler and router
	handler := NewHandler(cache, logger)
	router := SetupRouter(handler, cfg.CORS.AllowedOrigins)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		cfg:    cfg,
		srv:    srv,
		cache:  cache,
		logger: logger,
	}
}

// Router exposes the configured routes, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.srv.Handler.(chi.Router)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.srv.Shutdown(ctx)
}
