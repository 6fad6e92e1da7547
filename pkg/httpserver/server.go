// Package httpserver exposes the operational surface of a publisher
// process over HTTP: Prometheus metrics, liveness and readiness probes,
// health checks, and a pipeline stats snapshot for debugging.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsFunc returns the current pipeline snapshot for one publisher.
type StatsFunc func() pubsub.PublisherStats

// Server serves the operational endpoints of a publisher process.
type Server struct {
	config            Config
	logger            pubsub.Logger
	gatherer          prometheus.Gatherer
	healthChecks      map[string]HealthCheckFunc
	statsFuncs        map[string]StatsFunc
	customMiddlewares []func(http.Handler) http.Handler

	router       chi.Router
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// New creates an operational server with the given options.
func New(opts ...Option) (*Server, error) {
	srv := &Server{
		config:       DefaultConfig(),
		logger:       pubsub.NewNoopLogger(),
		healthChecks: make(map[string]HealthCheckFunc),
		statsFuncs:   make(map[string]StatsFunc),
	}

	for _, opt := range opts {
		opt(srv)
	}

	if err := srv.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	srv.router = chi.NewRouter()
	srv.registerMiddlewares()
	srv.registerRoutes()

	srv.httpServer = &http.Server{
		Addr:         srv.config.Address,
		Handler:      srv.router,
		ReadTimeout:  srv.config.ReadTimeout,
		WriteTimeout: srv.config.WriteTimeout,
		IdleTimeout:  srv.config.IdleTimeout,
	}

	return srv, nil
}

// Handler returns the server's root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerMiddlewares() {
	s.router.Use(requestIDMiddleware())
	s.router.Use(recoverMiddleware(s.logger))
	s.router.Use(loggingMiddleware(s.logger))

	for _, middleware := range s.customMiddlewares {
		s.router.Use(middleware)
	}
}

func (s *Server) registerRoutes() {
	s.router.Get("/health", healthHandler(s.config, s.healthChecks, s.logger))
	s.router.Get("/ready", readyHandler(s.healthChecks))
	s.router.Get("/live", liveHandler())
	s.router.Get("/debug/publisher", statsHandler(s.statsFuncs))

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
		s.logger.Info(context.Background(), "metrics endpoint enabled",
			pubsub.String("address", s.config.Address),
		)
	}
}

// statsHandler serves the pipeline snapshot of every registered publisher
// keyed by topic.
func statsHandler(statsFuncs map[string]StatsFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := make(map[string]pubsub.PublisherStats, len(statsFuncs))
		for name, fn := range statsFuncs {
			snapshot[name] = fn()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot)
	}
}
