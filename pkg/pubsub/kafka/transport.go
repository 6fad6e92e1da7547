// Package kafka provides a Transport that publishes batches through a
// synchronous sarama producer. Message ids are "partition:offset" as
// assigned by the broker. Ordering keys become record keys, so the hash
// partitioner keeps each key on one partition and per-key order survives
// on the broker side.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"

	"github.com/IBM/sarama"
)

// Transport publishes batches to Kafka. Safe for concurrent use; the
// pipeline calls it from many workers at once.
type Transport struct {
	client     sarama.Client
	producer   sarama.SyncProducer
	ownsClient bool
	cfg        *config
	closed     atomic.Bool
}

// NewTransport dials brokers and builds a transport that owns its client.
func NewTransport(brokers []string, opts ...Option) (*Transport, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := sarama.NewClient(brokers, cfg.saramaConfig())
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	return newFromClient(client, cfg, true)
}

// NewTransportFromClient builds a transport over an existing client, which
// stays owned by the caller and is not closed with the transport.
func NewTransportFromClient(client sarama.Client, opts ...Option) (*Transport, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return newFromClient(client, cfg, false)
}

func newFromClient(client sarama.Client, cfg *config, ownsClient bool) (*Transport, error) {
	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		if ownsClient {
			_ = client.Close()
		}
		return nil, fmt.Errorf("creating sync producer: %w", err)
	}

	return &Transport{
		client:     client,
		producer:   producer,
		ownsClient: ownsClient,
		cfg:        cfg,
	}, nil
}

// PublishBatch sends the whole batch in one producer call. SendMessages
// either acks every record or reports an error, in which case the batch is
// failed as a unit; the producer's internal retries happen before that.
func (t *Transport) PublishBatch(ctx context.Context, topic string, msgs []*pubsub.Message) ([]string, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]*sarama.ProducerMessage, len(msgs))
	for i, msg := range msgs {
		record := &sarama.ProducerMessage{
			Topic: topic,
			Value: sarama.ByteEncoder(msg.Data),
		}
		if msg.OrderingKey != "" {
			record.Key = sarama.StringEncoder(msg.OrderingKey)
		}
		for k, v := range msg.Attributes {
			record.Headers = append(record.Headers, sarama.RecordHeader{
				Key:   []byte(k),
				Value: []byte(v),
			})
		}
		records[i] = record
	}

	if err := t.producer.SendMessages(records); err != nil {
		return nil, fmt.Errorf("sending batch: %w", err)
	}

	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = fmt.Sprintf("%d:%d", record.Partition, record.Offset)
	}

	t.cfg.logger.Debug(ctx, "batch published to kafka",
		pubsub.String("topic", topic),
		pubsub.Int("messages", len(ids)),
	)
	return ids, nil
}

// Close shuts the producer down, and the client too when the transport
// owns it. Idempotent.
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := t.producer.Close()
	if t.ownsClient {
		err = errors.Join(err, t.client.Close())
	}
	return err
}
