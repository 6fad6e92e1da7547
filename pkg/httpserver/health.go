package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheckFunc probes one dependency; a non-nil error marks it unhealthy.
type HealthCheckFunc func(ctx context.Context) error

// CheckResult is the outcome of a single health check.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status      string                 `json:"status"`
	Service     string                 `json:"service"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Timestamp   time.Time              `json:"timestamp"`
	Checks      map[string]CheckResult `json:"checks,omitempty"`
}

// runHealthChecks executes every check concurrently under a shared timeout.
func runHealthChecks(ctx context.Context, checks map[string]HealthCheckFunc) (map[string]CheckResult, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		results   = make(map[string]CheckResult, len(checks))
		hasErrors bool
	)

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check HealthCheckFunc) {
			defer wg.Done()

			result := CheckResult{Status: "healthy"}
			if err := check(ctx); err != nil {
				result = CheckResult{Status: "unhealthy", Error: err.Error()}
			}

			mu.Lock()
			results[name] = result
			if result.Status == "unhealthy" {
				hasErrors = true
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	return results, hasErrors
}

// healthHandler reports overall health with detailed per-check results.
func healthHandler(config Config, checks map[string]HealthCheckFunc, logger pubsub.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, hasErrors := runHealthChecks(r.Context(), checks)

		status := "healthy"
		statusCode := http.StatusOK
		if hasErrors {
			status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
			for name, result := range results {
				if result.Status == "unhealthy" {
					logger.Warn(r.Context(), "health check failed",
						pubsub.String("check", name),
						pubsub.String("error", result.Error),
					)
				}
			}
		}

		health := HealthStatus{
			Status:      status,
			Service:     config.ServiceName,
			Version:     config.ServiceVersion,
			Environment: config.Environment,
			Timestamp:   time.Now(),
			Checks:      results,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(health)
	}
}

// readyHandler reports readiness as a bare status code.
func readyHandler(checks map[string]HealthCheckFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, hasErrors := runHealthChecks(r.Context(), checks); hasErrors {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Service Unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// liveHandler always reports the process as alive.
func liveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
