package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Routes(t *testing.T) {
	metrics := pubsub.NewMetrics()
	srv, err := New(
		WithServiceName("publisher-test"),
		WithServiceVersion("v1.2.3"),
		WithGatherer(metrics.Registry()),
		WithPublisherStats("orders", func() pubsub.PublisherStats {
			return pubsub.PublisherStats{PendingMessages: 7, ActiveWorkers: 2}
		}),
	)
	require.NoError(t, err)

	scenarios := []struct {
		name       string
		path       string
		statusCode int
	}{
		{name: "liveness probe", path: "/live", statusCode: http.StatusOK},
		{name: "readiness probe", path: "/ready", statusCode: http.StatusOK},
		{name: "health report", path: "/health", statusCode: http.StatusOK},
		{name: "prometheus metrics", path: "/metrics", statusCode: http.StatusOK},
		{name: "publisher stats", path: "/debug/publisher", statusCode: http.StatusOK},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, scenario.path, nil)

			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, scenario.statusCode, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestServer_HealthChecks(t *testing.T) {
	srv, err := New(
		WithServiceName("publisher-test"),
		WithHealthCheck("transport", func(ctx context.Context) error {
			return errors.New("broker unreachable")
		}),
		WithHealthCheck("spool", func(ctx context.Context) error {
			return nil
		}),
	)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var health HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "publisher-test", health.Service)
	assert.Equal(t, "unhealthy", health.Checks["transport"].Status)
	assert.Equal(t, "broker unreachable", health.Checks["transport"].Error)
	assert.Equal(t, "healthy", health.Checks["spool"].Status)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_PublisherStats(t *testing.T) {
	transport := pubsub.TransportFunc(func(ctx context.Context, topic string, msgs []*pubsub.Message) ([]string, error) {
		ids := make([]string, len(msgs))
		for i := range msgs {
			ids[i] = "id"
		}
		return ids, nil
	})
	publisher, err := pubsub.NewPublisher("orders", transport)
	require.NoError(t, err)
	defer publisher.Close()

	srv, err := New(WithPublisherStats("orders", publisher.Stats))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/publisher", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot map[string]pubsub.PublisherStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snapshot))
	assert.Contains(t, snapshot, "orders")
}

func TestServer_RecoverMiddleware(t *testing.T) {
	srv, err := New(WithMiddleware(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/live" {
				panic("boom")
			}
			next.ServeHTTP(w, r)
		})
	}))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_InvalidConfig(t *testing.T) {
	_, err := New(WithServiceName("  "))
	require.Error(t, err)

	_, err = New(WithReadTimeout(-time.Second))
	require.Error(t, err)
}

func TestServer_Shutdown(t *testing.T) {
	srv, err := New(WithPort("0"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
