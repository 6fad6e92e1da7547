package pubsub

import "time"

// Option is a functional option for configuring a Publisher.
type Option func(*config)

// WithCountThreshold sets how many messages a batch holds before it is
// sent. Zero batches one message at a time. Values above the server
// maximum are clamped. Negative values are ignored.
func WithCountThreshold(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.countThreshold = n
		}
	}
}

// WithByteThreshold sets the maximum byte size of a batch. A batch handed
// to the transport never exceeds it. Zero disables the byte dimension
// entirely, including the oversized-message rejection. Values above the
// server maximum are clamped. Negative values are ignored.
func WithByteThreshold(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.byteThreshold = n
		}
	}
}

// WithDelayThreshold sets how long an unfilled batch may wait before it is
// flushed anyway. Zero disables timer-driven flushing; batches then go out
// only on count, bytes, or an explicit Flush. Negative values are ignored.
func WithDelayThreshold(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.delayThreshold = d
		}
	}
}

// WithPublishTimeout sets the per-batch deadline applied to every
// transport call.
func WithPublishTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.publishTimeout = d
		}
	}
}

// WithIdleTimeout sets how long a per-key worker may sit idle before it is
// evicted. Zero disables eviction; workers then live until Close. Paused
// keys are never evicted regardless of this setting.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.idleTimeout = d
		}
	}
}

// WithEvictionInterval sets how often the eviction sweep runs.
func WithEvictionInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.evictInterval = d
		}
	}
}

// WithLogger sets the logger. The default logs nothing.
func WithLogger(logger Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics attaches a Prometheus metrics set to the publisher.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithInstrumentation enables OpenTelemetry tracing of batch sends.
func WithInstrumentation(i *Instrumentation) Option {
	return func(c *config) {
		if i != nil {
			c.instrumentation = i
		}
	}
}
