package pubsub

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	enqueueAccepted = "accepted"
	enqueueRejected = "rejected"
	outcomeSuccess  = "success"
	outcomeError    = "error"
)

// Metrics encapsulates the publisher's Prometheus metrics on a private
// registry, no global state. Pass the same Metrics to several publishers
// to aggregate them; the topic label keeps the series apart. All record
// methods are safe on a nil receiver so an unconfigured publisher pays
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	enqueuedTotal  *prometheus.CounterVec
	publishedTotal *prometheus.CounterVec
	batchesTotal   *prometheus.CounterVec
	batchMessages  *prometheus.HistogramVec
	batchBytes     *prometheus.HistogramVec
	batchDuration  *prometheus.HistogramVec
	flushDuration  *prometheus.HistogramVec

	queueDepth      *prometheus.GaugeVec
	pendingMessages *prometheus.GaugeVec
	inflightBatches *prometheus.GaugeVec
	activeWorkers   *prometheus.GaugeVec
	pausedKeys      *prometheus.GaugeVec
}

// NewMetrics creates a metrics set with all collectors registered,
// Go runtime and process collectors included.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		enqueuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubsub_publisher_enqueued_total",
				Help: "Messages handed to Publish, by local admission result",
			},
			[]string{"topic", "result"}, // result: accepted, rejected
		),

		publishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubsub_publisher_messages_total",
				Help: "Message results resolved by the pipeline",
			},
			[]string{"topic", "status"}, // status: success, error
		),

		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubsub_publisher_batches_total",
				Help: "Batches handed to the transport",
			},
			[]string{"topic", "status"},
		),

		batchMessages: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pubsub_publisher_batch_messages",
				Help:    "Number of messages in sent batches",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
			[]string{"topic"},
		),

		batchBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pubsub_publisher_batch_bytes",
				Help:    "Byte size of sent batches",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
			[]string{"topic"},
		),

		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pubsub_publisher_batch_duration_seconds",
				Help:    "Time spent in Transport.PublishBatch",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		),

		flushDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pubsub_publisher_flush_duration_seconds",
				Help:    "Time to drain all workers on a flush",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		),

		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pubsub_publisher_queue_depth",
				Help: "Commands waiting in the dispatcher mailbox",
			},
			[]string{"topic"},
		),

		pendingMessages: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pubsub_publisher_pending_messages",
				Help: "Accepted messages not yet handed to the transport",
			},
			[]string{"topic"},
		),

		inflightBatches: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pubsub_publisher_inflight_batches",
				Help: "Batches currently at the transport",
			},
			[]string{"topic"},
		),

		activeWorkers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pubsub_publisher_active_workers",
				Help: "Live per-key batch workers",
			},
			[]string{"topic"},
		),

		pausedKeys: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pubsub_publisher_paused_keys",
				Help: "Ordering keys paused by a failed batch",
			},
			[]string{"topic"},
		),
	}

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry.MustRegister(
		m.enqueuedTotal,
		m.publishedTotal,
		m.batchesTotal,
		m.batchMessages,
		m.batchBytes,
		m.batchDuration,
		m.flushDuration,
		m.queueDepth,
		m.pendingMessages,
		m.inflightBatches,
		m.activeWorkers,
		m.pausedKeys,
	)

	return m
}

// Registry exposes the underlying registry for custom collectors or for
// mounting alongside other metric sets.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          m.registry,
	})
}

func (m *Metrics) recordEnqueued(topic, result string) {
	if m == nil {
		return
	}
	m.enqueuedTotal.WithLabelValues(topic, result).Inc()
}

func (m *Metrics) recordPublished(topic, status string, messages int) {
	if m == nil {
		return
	}
	m.publishedTotal.WithLabelValues(topic, status).Add(float64(messages))
}

func (m *Metrics) recordBatch(topic string, messages, bytes int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := outcomeSuccess
	if err != nil {
		status = outcomeError
	}
	m.batchesTotal.WithLabelValues(topic, status).Inc()
	m.batchMessages.WithLabelValues(topic).Observe(float64(messages))
	m.batchBytes.WithLabelValues(topic).Observe(float64(bytes))
	m.batchDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

func (m *Metrics) observeFlush(topic string, duration time.Duration) {
	if m == nil {
		return
	}
	m.flushDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

func (m *Metrics) setQueueDepth(topic string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(topic).Set(float64(depth))
}

func (m *Metrics) setPendingMessages(topic string, n int64) {
	if m == nil {
		return
	}
	m.pendingMessages.WithLabelValues(topic).Set(float64(n))
}

func (m *Metrics) setInflightBatches(topic string, n int64) {
	if m == nil {
		return
	}
	m.inflightBatches.WithLabelValues(topic).Set(float64(n))
}

func (m *Metrics) setActiveWorkers(topic string, n int64) {
	if m == nil {
		return
	}
	m.activeWorkers.WithLabelValues(topic).Set(float64(n))
}

func (m *Metrics) setPausedKeys(topic string, n int64) {
	if m == nil {
		return
	}
	m.pausedKeys.WithLabelValues(topic).Set(float64(n))
}
