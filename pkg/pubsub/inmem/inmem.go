// Package inmem provides an in-memory Transport for tests, examples and
// local development. Messages are stored per topic and assigned ULID ids,
// so delivered order is inspectable and ids sort by publish time.
package inmem

import (
	"context"
	"crypto/rand"
	"sync"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"

	"github.com/oklog/ulid/v2"
)

// PublishHook runs before a batch is stored. Returning an error fails the
// whole batch, which is how tests inject transport failures.
type PublishHook func(topic string, msgs []*pubsub.Message) error

// Option configures the transport.
type Option func(*Transport)

// WithPublishHook installs a hook invoked on every PublishBatch call.
func WithPublishHook(hook PublishHook) Option {
	return func(t *Transport) {
		if hook != nil {
			t.hook = hook
		}
	}
}

// StoredMessage is one delivered message with its assigned id.
type StoredMessage struct {
	ID          string
	Data        []byte
	OrderingKey string
	Attributes  map[string]string
}

// Transport keeps published batches in memory. Safe for concurrent use.
type Transport struct {
	mu       sync.Mutex
	messages map[string][]StoredMessage
	entropy  *ulid.MonotonicEntropy
	hook     PublishHook
}

// New creates an empty in-memory transport.
func New(opts ...Option) *Transport {
	t := &Transport{
		messages: make(map[string][]StoredMessage),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PublishBatch stores the batch and returns one ULID per message, in order.
// The batch is all or nothing: a hook error or a done context stores none
// of it.
func (t *Transport) PublishBatch(ctx context.Context, topic string, msgs []*pubsub.Message) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.hook != nil {
		if err := t.hook(topic, msgs); err != nil {
			return nil, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stored := make([]StoredMessage, len(msgs))
	ids := make([]string, len(msgs))
	for i, msg := range msgs {
		// Monotonic entropy is not safe for concurrent readers; ids are
		// generated under the lock so they stay strictly increasing.
		id, err := ulid.New(ulid.Now(), t.entropy)
		if err != nil {
			return nil, err
		}
		ids[i] = id.String()
		stored[i] = StoredMessage{
			ID:          ids[i],
			Data:        append([]byte(nil), msg.Data...),
			OrderingKey: msg.OrderingKey,
			Attributes:  cloneAttributes(msg.Attributes),
		}
	}

	t.messages[topic] = append(t.messages[topic], stored...)
	return ids, nil
}

// Messages returns a copy of everything delivered to topic, in delivery
// order.
func (t *Transport) Messages(topic string) []StoredMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]StoredMessage(nil), t.messages[topic]...)
}

// Len reports how many messages topic holds.
func (t *Transport) Len(topic string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages[topic])
}

func cloneAttributes(attrs map[string]string) map[string]string {
	if attrs == nil {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
