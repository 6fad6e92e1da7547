package pubsub

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordings(t *testing.T) {
	m := NewMetrics()

	m.recordEnqueued("orders", enqueueAccepted)
	m.recordEnqueued("orders", enqueueAccepted)
	m.recordEnqueued("orders", enqueueRejected)
	m.recordPublished("orders", outcomeSuccess, 5)
	m.recordBatch("orders", 5, 2048, 12*time.Millisecond, nil)
	m.setQueueDepth("orders", 7)

	require.Equal(t, float64(2), testutil.ToFloat64(m.enqueuedTotal.WithLabelValues("orders", enqueueAccepted)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.enqueuedTotal.WithLabelValues("orders", enqueueRejected)))
	require.Equal(t, float64(5), testutil.ToFloat64(m.publishedTotal.WithLabelValues("orders", outcomeSuccess)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.batchesTotal.WithLabelValues("orders", outcomeSuccess)))
	require.Equal(t, float64(7), testutil.ToFloat64(m.queueDepth.WithLabelValues("orders")))
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	m.recordEnqueued("orders", enqueueAccepted)
	m.recordPublished("orders", outcomeSuccess, 1)
	m.recordBatch("orders", 1, 10, time.Millisecond, nil)
	m.observeFlush("orders", time.Millisecond)
	m.setQueueDepth("orders", 1)
	m.setPendingMessages("orders", 1)
	m.setInflightBatches("orders", 1)
	m.setActiveWorkers("orders", 1)
	m.setPausedKeys("orders", 1)
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	m := NewMetrics()
	m.recordEnqueued("orders", enqueueAccepted)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "pubsub_publisher_enqueued_total")
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPublisherEmitsMetrics(t *testing.T) {
	m := NewMetrics()
	transport := &capturingTransport{}

	pub, err := NewPublisher("orders", transport,
		WithCountThreshold(2),
		WithDelayThreshold(0),
		WithMetrics(m),
	)
	require.NoError(t, err)
	defer pub.Close()

	res1 := pub.Publish(&Message{Data: []byte("m1")})
	res2 := pub.Publish(&Message{Data: []byte("m2")})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = res1.Get(ctx)
	require.NoError(t, err)
	_, err = res2.Get(ctx)
	require.NoError(t, err)

	require.Equal(t, float64(2), testutil.ToFloat64(m.enqueuedTotal.WithLabelValues("orders", enqueueAccepted)))
	require.Equal(t, float64(2), testutil.ToFloat64(m.publishedTotal.WithLabelValues("orders", outcomeSuccess)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.batchesTotal.WithLabelValues("orders", outcomeSuccess)))
}
