package kafka

import (
	"time"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"

	"github.com/IBM/sarama"
)

const (
	defaultMaxMessageBytes = 1048576 // 1MB
	defaultRetryMax        = 3
	defaultRetryBackoff    = 100 * time.Millisecond
)

type config struct {
	version         sarama.KafkaVersion
	requiredAcks    sarama.RequiredAcks
	compression     sarama.CompressionCodec
	maxMessageBytes int
	retryMax        int
	idempotent      bool
	logger          pubsub.Logger
}

func defaultConfig() *config {
	return &config{
		version:         sarama.V3_6_0_0,
		requiredAcks:    sarama.WaitForAll,
		compression:     sarama.CompressionSnappy,
		maxMessageBytes: defaultMaxMessageBytes,
		retryMax:        defaultRetryMax,
		logger:          pubsub.NewNoopLogger(),
	}
}

// saramaConfig builds the producer configuration. Returning successes and
// errors is what lets SendMessages report per-batch outcomes synchronously.
func (c *config) saramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = c.version

	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = c.requiredAcks
	cfg.Producer.Retry.Max = c.retryMax
	cfg.Producer.Retry.Backoff = defaultRetryBackoff
	cfg.Producer.MaxMessageBytes = c.maxMessageBytes
	cfg.Producer.Compression = c.compression

	if c.idempotent {
		cfg.Producer.Idempotent = true
		cfg.Producer.RequiredAcks = sarama.WaitForAll
		cfg.Net.MaxOpenRequests = 1
	}

	return cfg
}
