package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"

	"github.com/prometheus/client_golang/prometheus"
)

// Option is a function that configures a Server.
type Option func(*Server)

// WithConfig sets the full configuration for the server.
func WithConfig(cfg Config) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// WithPort sets the server port.
func WithPort(port string) Option {
	return func(s *Server) {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		s.config.Address = port
	}
}

// WithReadTimeout sets the read timeout.
func WithReadTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.config.ReadTimeout = timeout
	}
}

// WithWriteTimeout sets the write timeout.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.config.WriteTimeout = timeout
	}
}

// WithShutdownTimeout sets how long a graceful shutdown may take.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.config.ShutdownTimeout = timeout
	}
}

// WithServiceName sets the service name reported by /health.
func WithServiceName(name string) Option {
	return func(s *Server) {
		s.config.ServiceName = name
	}
}

// WithServiceVersion sets the service version reported by /health.
func WithServiceVersion(version string) Option {
	return func(s *Server) {
		s.config.ServiceVersion = version
	}
}

// WithEnvironment sets the environment reported by /health.
func WithEnvironment(env string) Option {
	return func(s *Server) {
		s.config.Environment = env
	}
}

// WithLogger sets the logger used by the server and its middlewares.
func WithLogger(logger pubsub.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer enables /metrics backed by the given gatherer, typically
// pubsub.Metrics.Registry().
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithHealthCheck registers a named health check run by /health and /ready.
func WithHealthCheck(name string, check HealthCheckFunc) Option {
	return func(s *Server) {
		if check != nil {
			s.healthChecks[name] = check
		}
	}
}

// WithPublisherStats exposes a publisher's pipeline snapshot on
// /debug/publisher under the given name.
func WithPublisherStats(name string, fn StatsFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.statsFuncs[name] = fn
		}
	}
}

// WithMiddleware adds a custom middleware to the server.
func WithMiddleware(middleware func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.customMiddlewares = append(s.customMiddlewares, middleware)
	}
}
