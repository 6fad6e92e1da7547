package rabbitmq

import (
	"time"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"
)

const (
	defaultContentType           = "application/octet-stream"
	defaultRedialInitialInterval = 500 * time.Millisecond
	defaultRedialMaxInterval     = 5 * time.Second
	defaultRedialMaxElapsedTime  = 30 * time.Second

	// orderingKeyHeader carries the pipeline ordering key on each message,
	// since AMQP has no native equivalent.
	orderingKeyHeader = "x-ordering-key"
)

type config struct {
	exchange    string
	contentType string

	redialInitialInterval time.Duration
	redialMaxInterval     time.Duration
	redialMaxElapsedTime  time.Duration

	logger pubsub.Logger
}

func defaultConfig() *config {
	return &config{
		contentType:           defaultContentType,
		redialInitialInterval: defaultRedialInitialInterval,
		redialMaxInterval:     defaultRedialMaxInterval,
		redialMaxElapsedTime:  defaultRedialMaxElapsedTime,
		logger:                pubsub.NewNoopLogger(),
	}
}

// Option configures the RabbitMQ transport.
type Option func(*config)

// WithExchange publishes through the named exchange instead of the default
// one. The topic is used as the routing key either way.
func WithExchange(exchange string) Option {
	return func(c *config) {
		c.exchange = exchange
	}
}

// WithContentType sets the content type stamped on messages that don't
// carry a content_type attribute.
func WithContentType(contentType string) Option {
	return func(c *config) {
		if contentType != "" {
			c.contentType = contentType
		}
	}
}

// WithRedialInterval tunes the exponential backoff used when the channel
// has to be re-established.
func WithRedialInterval(initial, max time.Duration) Option {
	return func(c *config) {
		if initial > 0 {
			c.redialInitialInterval = initial
		}
		if max > 0 {
			c.redialMaxInterval = max
		}
	}
}

// WithRedialTimeout bounds the total time spent redialing before a publish
// fails.
func WithRedialTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.redialMaxElapsedTime = d
		}
	}
}

// WithLogger sets the logger. The default logs nothing.
func WithLogger(logger pubsub.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
