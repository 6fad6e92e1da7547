// Package rabbitmq provides a Transport that publishes batches over AMQP
// with publisher confirms. Message ids are broker delivery tags; tags are
// per-channel counters, so they restart when the transport redials.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Transport publishes batches to RabbitMQ. AMQP channels are not safe for
// concurrent publishing, so calls are serialized on one confirmed channel;
// a lost connection is re-established with exponential backoff on the next
// publish.
type Transport struct {
	cfg *config
	url string

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

// NewTransport dials the broker and puts the channel in confirm mode.
func NewTransport(url string, opts ...Option) (*Transport, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	t := &Transport{cfg: cfg, url: url}
	if err := t.connect(); err != nil {
		return nil, err
	}
	return t, nil
}

// connect dials and opens a confirmed channel. Callers hold t.mu.
func (t *Transport) connect() error {
	conn, err := amqp.Dial(t.url)
	if err != nil {
		return fmt.Errorf("dialing rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("opening channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("enabling publisher confirms: %w", err)
	}

	t.conn = conn
	t.ch = ch
	return nil
}

// ensureChannel redials with exponential backoff when the channel is gone.
// Callers hold t.mu.
func (t *Transport) ensureChannel(ctx context.Context) error {
	if t.ch != nil && !t.ch.IsClosed() {
		return nil
	}

	backoffConfig := backoff.NewExponentialBackOff()
	backoffConfig.InitialInterval = t.cfg.redialInitialInterval
	backoffConfig.MaxInterval = t.cfg.redialMaxInterval
	backoffConfig.MaxElapsedTime = t.cfg.redialMaxElapsedTime

	operation := func() error {
		if t.closed {
			return backoff.Permanent(ErrTransportClosed)
		}
		if err := t.connect(); err != nil {
			t.cfg.logger.Warn(ctx, "rabbitmq redial failed", pubsub.Err(err))
			return err
		}
		t.cfg.logger.Info(ctx, "rabbitmq channel re-established")
		return nil
	}

	return backoff.Retry(operation, backoff.WithContext(backoffConfig, ctx))
}

// PublishBatch publishes every message and then waits for all broker
// confirmations. Any publish error, nack or expired context fails the
// batch as a unit.
func (t *Transport) PublishBatch(ctx context.Context, topic string, msgs []*pubsub.Message) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrTransportClosed
	}
	if err := t.ensureChannel(ctx); err != nil {
		return nil, err
	}

	confirmations := make([]*amqp.DeferredConfirmation, len(msgs))
	for i, msg := range msgs {
		pub := amqp.Publishing{
			Body:         msg.Data,
			ContentType:  t.cfg.contentType,
			DeliveryMode: amqp.Persistent,
			Headers:      amqp.Table{},
		}
		for k, v := range msg.Attributes {
			pub.Headers[k] = v
		}
		if ct, ok := msg.Attributes["content_type"]; ok {
			pub.ContentType = ct
		}
		if msg.OrderingKey != "" {
			pub.Headers[orderingKeyHeader] = msg.OrderingKey
		}

		dc, err := t.ch.PublishWithDeferredConfirmWithContext(ctx, t.cfg.exchange, topic, false, false, pub)
		if err != nil {
			return nil, fmt.Errorf("publishing message %d of %d: %w", i+1, len(msgs), err)
		}
		confirmations[i] = dc
	}

	ids := make([]string, len(confirmations))
	for i, dc := range confirmations {
		acked, err := dc.WaitContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("awaiting confirm for message %d: %w", i+1, err)
		}
		if !acked {
			return nil, fmt.Errorf("%w: delivery tag %d", ErrPublishNacked, dc.DeliveryTag)
		}
		ids[i] = strconv.FormatUint(dc.DeliveryTag, 10)
	}

	t.cfg.logger.Debug(ctx, "batch published to rabbitmq",
		pubsub.String("topic", topic),
		pubsub.Int("messages", len(ids)),
	)
	return ids, nil
}

// DeclareQueue declares a durable queue. With the default exchange, a
// publish to topic lands on the queue of the same name.
func (t *Transport) DeclareQueue(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTransportClosed
	}
	if err := t.ensureChannel(context.Background()); err != nil {
		return err
	}

	_, err := t.ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}

// Close tears the channel and connection down. Idempotent.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	var err error
	if t.ch != nil && !t.ch.IsClosed() {
		err = t.ch.Close()
	}
	if t.conn != nil && !t.conn.IsClosed() {
		err = errors.Join(err, t.conn.Close())
	}
	return err
}
