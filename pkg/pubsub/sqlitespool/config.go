package sqlitespool

import (
	"time"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"
)

const (
	defaultBusyTimeout = 5 * time.Second
	defaultDrainBatch  = 100
)

type config struct {
	busyTimeout time.Duration
	logger      pubsub.Logger
}

func defaultConfig() *config {
	return &config{
		busyTimeout: defaultBusyTimeout,
		logger:      pubsub.NewNoopLogger(),
	}
}

// Option customizes the transport.
type Option func(*config)

// WithBusyTimeout sets how long SQLite waits on a locked database before
// giving up. Zero keeps the default.
func WithBusyTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.busyTimeout = d
		}
	}
}

// WithLogger sets the logger used for transport events.
func WithLogger(logger pubsub.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
