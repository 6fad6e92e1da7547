package pubsub

import "sync/atomic"

// PublisherStats is a point-in-time snapshot of pipeline occupancy, the
// observable form of the otherwise unbounded internal queues.
type PublisherStats struct {
	// QueuedCommands is the number of commands waiting in the dispatcher
	// mailbox, publishes not yet routed to a worker included.
	QueuedCommands int

	// PendingMessages is the number of accepted messages not yet handed to
	// the transport.
	PendingMessages int64

	// InflightBatches is the number of batches currently at the transport.
	InflightBatches int64

	// ActiveWorkers is the number of live per-key workers, the shared
	// unordered worker included.
	ActiveWorkers int64

	// PausedKeys is the number of ordering keys paused by a failed batch.
	PausedKeys int64
}

// pipelineStats holds the shared counters behind PublisherStats. Workers
// update them with atomics; every update is mirrored into the Prometheus
// gauges when metrics are attached.
type pipelineStats struct {
	topic   string
	metrics *Metrics

	pending  atomic.Int64
	inflight atomic.Int64
	workers  atomic.Int64
	paused   atomic.Int64
}

func newPipelineStats(topic string, metrics *Metrics) *pipelineStats {
	return &pipelineStats{topic: topic, metrics: metrics}
}

func (s *pipelineStats) pendingAdd(n int64) {
	s.metrics.setPendingMessages(s.topic, s.pending.Add(n))
}

func (s *pipelineStats) inflightAdd(n int64) {
	s.metrics.setInflightBatches(s.topic, s.inflight.Add(n))
}

func (s *pipelineStats) workersAdd(n int64) {
	s.metrics.setActiveWorkers(s.topic, s.workers.Add(n))
}

func (s *pipelineStats) pausedAdd(n int64) {
	s.metrics.setPausedKeys(s.topic, s.paused.Add(n))
}
