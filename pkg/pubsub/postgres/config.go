package postgres

import (
	"time"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"
)

const (
	defaultMaxConns        = 25
	defaultMinConns        = 5
	defaultMaxConnLifetime = 10 * time.Minute
	defaultMaxConnIdleTime = 3 * time.Minute
)

type config struct {
	maxConns        int32
	minConns        int32
	maxConnLifetime time.Duration
	maxConnIdleTime time.Duration
	logger          pubsub.Logger
}

func defaultConfig() *config {
	return &config{
		maxConns:        defaultMaxConns,
		minConns:        defaultMinConns,
		maxConnLifetime: defaultMaxConnLifetime,
		maxConnIdleTime: defaultMaxConnIdleTime,
		logger:          pubsub.NewNoopLogger(),
	}
}

// Option customizes the transport.
type Option func(*config)

// WithMaxConns caps the total size of the connection pool.
func WithMaxConns(n int32) Option {
	return func(c *config) {
		if n > 0 {
			c.maxConns = n
		}
	}
}

// WithMinConns sets how many connections the pool keeps open while idle.
func WithMinConns(n int32) Option {
	return func(c *config) {
		if n >= 0 {
			c.minConns = n
		}
	}
}

// WithConnLifetime bounds how long a pooled connection may be reused.
func WithConnLifetime(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.maxConnLifetime = d
		}
	}
}

// WithConnIdleTime bounds how long a pooled connection may sit idle.
func WithConnIdleTime(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.maxConnIdleTime = d
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
