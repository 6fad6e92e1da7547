// Package pubsub implements a client-side batching publish pipeline.
//
// A Publisher accepts messages without blocking, groups them into batches
// bounded by count, bytes, and time, and hands each batch to a Transport.
// Messages sharing a non-empty ordering key are delivered in submission
// order with at most one batch in flight per key; a failed ordered batch
// pauses its key permanently. Unordered messages batch together and fan
// out concurrently.
package pubsub

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Publisher is the handle callers publish through. It is cheap to share:
// all methods are safe for concurrent use and everything stateful lives in
// the dispatcher goroutine behind it.
type Publisher struct {
	topic  string
	cfg    *config
	disp   *dispatcher
	closed atomic.Bool
}

// NewPublisher creates a publisher for topic on top of transport and
// starts its dispatch loop.
func NewPublisher(topic string, transport Transport, opts ...Option) (*Publisher, error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if transport == nil {
		return nil, ErrNilTransport
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.clamp()

	d := newDispatcher(topic, transport, cfg)
	go d.run()

	cfg.logger.Info(context.Background(), "pubsub publisher started",
		String("topic", topic),
		Int("count_threshold", cfg.countThreshold),
		Int("byte_threshold", cfg.byteThreshold),
		Duration("delay_threshold", cfg.delayThreshold),
	)

	return &Publisher{topic: topic, cfg: cfg, disp: d}, nil
}

// Publish enqueues msg and returns immediately. The returned result
// resolves once the message's batch has been accepted or rejected by the
// transport. Local rejections (nil message, oversized message, closed
// publisher) come back already resolved.
func (p *Publisher) Publish(msg *Message) *PublishResult {
	if p.closed.Load() {
		return resolvedResult(ErrPublisherClosed)
	}
	if msg == nil {
		p.cfg.metrics.recordEnqueued(p.topic, enqueueRejected)
		return resolvedResult(ErrNilMessage)
	}

	size := msg.size()
	if p.cfg.byteThreshold > 0 && size > p.cfg.byteThreshold {
		p.cfg.metrics.recordEnqueued(p.topic, enqueueRejected)
		return resolvedResult(fmt.Errorf("%w: %d bytes, threshold %d", ErrMessageTooLarge, size, p.cfg.byteThreshold))
	}

	pp := &pendingPublish{msg: msg, res: newPublishResult(), size: size}
	if !p.disp.mail.push(publishCommand{pp: pp}) {
		return resolvedResult(ErrPublisherClosed)
	}
	p.cfg.metrics.recordEnqueued(p.topic, enqueueAccepted)
	p.cfg.metrics.setQueueDepth(p.topic, p.disp.mail.len())
	return pp.res
}

// Flush sends every message accepted so far and blocks until the transport
// has resolved all of them or ctx is done. A ctx error abandons the wait,
// not the flush.
func (p *Publisher) Flush(ctx context.Context) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}
	done := make(chan struct{})
	if !p.disp.mail.push(flushCommand{done: done}) {
		return ErrPublisherClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes everything still pending, stops the pipeline, and waits
// for it to exit. Publishing afterwards fails with ErrPublisherClosed, as
// does a second Close.
func (p *Publisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrPublisherClosed
	}
	p.disp.mail.close()
	<-p.disp.done
	p.cfg.logger.Info(context.Background(), "pubsub publisher closed",
		String("topic", p.topic),
	)
	return nil
}

// Topic returns the topic this publisher sends to.
func (p *Publisher) Topic() string {
	return p.topic
}

// Stats returns a snapshot of pipeline occupancy.
func (p *Publisher) Stats() PublisherStats {
	return PublisherStats{
		QueuedCommands:  p.disp.mail.len(),
		PendingMessages: p.disp.stats.pending.Load(),
		InflightBatches: p.disp.stats.inflight.Load(),
		ActiveWorkers:   p.disp.stats.workers.Load(),
		PausedKeys:      p.disp.stats.paused.Load(),
	}
}
