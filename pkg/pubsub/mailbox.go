package pubsub

import "sync"

// mailbox is an unbounded FIFO queue connecting producers to a single
// consumer goroutine. Pushes never block, which keeps Publish non-blocking
// no matter how far the pipeline lags; the cost is that depth is only
// observable, not bounded. The consumer selects on wake and drains with
// pop until empty.
type mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	wakeCh chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{wakeCh: make(chan struct{}, 1)}
}

// push appends an item and signals the consumer. It reports false when the
// mailbox is closed and the item was not accepted.
func (m *mailbox[T]) push(item T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, item)
	m.mu.Unlock()
	m.signal()
	return true
}

// pop removes the oldest item; ok is false when the queue is empty.
func (m *mailbox[T]) pop() (item T, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return item, false
	}
	item = m.items[0]
	var zero T
	m.items[0] = zero
	m.items = m.items[1:]
	if len(m.items) == 0 {
		// Release the backing array once drained so bursts don't pin memory.
		m.items = nil
	}
	return item, true
}

// close marks the mailbox closed and wakes the consumer. Items already
// queued remain poppable; further pushes are refused. Idempotent.
func (m *mailbox[T]) close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	m.signal()
}

func (m *mailbox[T]) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mailbox[T]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// wake returns the channel the consumer selects on. Signals are coalesced;
// one wake may cover many pushes, so consumers must pop until empty.
func (m *mailbox[T]) wake() <-chan struct{} {
	return m.wakeCh
}

func (m *mailbox[T]) signal() {
	select {
	case m.wakeCh <- struct{}{}:
	default:
	}
}
