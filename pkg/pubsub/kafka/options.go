package kafka

import (
	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"

	"github.com/IBM/sarama"
)

// Option configures the Kafka transport.
type Option func(*config)

// WithVersion sets the Kafka protocol version to negotiate.
func WithVersion(version sarama.KafkaVersion) Option {
	return func(c *config) {
		c.version = version
	}
}

// WithRequiredAcks sets the acknowledgement level brokers must reach before
// a send returns. The default waits for all in-sync replicas.
func WithRequiredAcks(acks sarama.RequiredAcks) Option {
	return func(c *config) {
		c.requiredAcks = acks
	}
}

// WithCompression sets the codec applied to record batches.
func WithCompression(codec sarama.CompressionCodec) Option {
	return func(c *config) {
		c.compression = codec
	}
}

// WithMaxMessageBytes sets the largest record the producer will attempt.
// Align it with the publisher's byte threshold and the broker's
// message.max.bytes.
func WithMaxMessageBytes(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxMessageBytes = n
		}
	}
}

// WithRetryMax sets how many times the producer retries a failing broker
// request before PublishBatch reports the failure.
func WithRetryMax(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.retryMax = n
		}
	}
}

// WithIdempotent enables the idempotent producer, which prevents duplicate
// records during internal retries at the cost of one in-flight request per
// connection.
func WithIdempotent() Option {
	return func(c *config) {
		c.idempotent = true
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
