package pubsub

import "time"

const (
	defaultCountThreshold = 100
	defaultByteThreshold  = 1_000_000
	defaultDelayThreshold = 10 * time.Millisecond
	defaultPublishTimeout = 60 * time.Second
	defaultIdleTimeout    = 5 * time.Minute
	defaultEvictInterval  = 30 * time.Second

	// Server-side maxima. Settings above these are silently clamped.
	maxCountThreshold = 1000
	maxByteThreshold  = 10 * 1024 * 1024
	maxDelayThreshold = time.Minute
)

// config holds the internal configuration for a Publisher.
type config struct {
	// Batching thresholds. A batch is handed to the transport when it
	// reaches countThreshold messages or byteThreshold bytes, or when
	// delayThreshold elapses, whichever comes first.
	countThreshold int
	byteThreshold  int
	delayThreshold time.Duration

	// Per-batch transport deadline.
	publishTimeout time.Duration

	// Worker eviction. A per-key worker that has been idle for idleTimeout
	// is reaped on the next sweep; zero disables eviction.
	idleTimeout   time.Duration
	evictInterval time.Duration

	// Logger for structured logging.
	logger Logger

	// Prometheus metrics (optional).
	metrics *Metrics

	// OpenTelemetry instrumentation (optional).
	instrumentation *Instrumentation
}

// defaultConfig returns a config with production defaults. The threshold
// defaults favor small-latency batching: a batch goes out after 100
// messages, 1MB, or 10ms, whichever is hit first.
func defaultConfig() *config {
	return &config{
		countThreshold: defaultCountThreshold,
		byteThreshold:  defaultByteThreshold,
		delayThreshold: defaultDelayThreshold,
		publishTimeout: defaultPublishTimeout,
		idleTimeout:    defaultIdleTimeout,
		evictInterval:  defaultEvictInterval,
		logger:         NewNoopLogger(),
	}
}

// clamp normalizes thresholds after options are applied. Zero keeps its
// documented meaning: a zero count threshold batches one message at a time,
// a zero byte threshold disables the byte dimension, and a zero delay
// threshold disables timer-driven flushing.
func (c *config) clamp() {
	if c.countThreshold > maxCountThreshold {
		c.countThreshold = maxCountThreshold
	}
	if c.byteThreshold > maxByteThreshold {
		c.byteThreshold = maxByteThreshold
	}
	if c.delayThreshold > maxDelayThreshold {
		c.delayThreshold = maxDelayThreshold
	}
	if c.countThreshold == 0 {
		c.countThreshold = 1
	}
}
