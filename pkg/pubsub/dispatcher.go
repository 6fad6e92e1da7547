package pubsub

import (
	"context"
	"time"
)

// workerEntry tracks a live worker plus the last time the dispatcher routed
// a publish to it. Eviction needs both halves: the worker's own idle state
// and proof that nothing newer is still sitting in its mailbox.
type workerEntry struct {
	w          *batchWorker
	lastRouted time.Time
}

// dispatcher is the single event loop behind a Publisher. It owns the
// key-to-worker registry and is the only goroutine that creates, feeds,
// or retires workers, which is what makes worker mailbox lifetime safe
// without locks.
type dispatcher struct {
	topic     string
	transport Transport
	cfg       *config
	stats     *pipelineStats

	mail    *mailbox[command]
	workers map[string]*workerEntry
	done    chan struct{}
}

func newDispatcher(topic string, transport Transport, cfg *config) *dispatcher {
	return &dispatcher{
		topic:     topic,
		transport: transport,
		cfg:       cfg,
		stats:     newPipelineStats(topic, cfg.metrics),
		mail:      newMailbox[command](),
		workers:   make(map[string]*workerEntry),
		done:      make(chan struct{}),
	}
}

func (d *dispatcher) run() {
	defer close(d.done)

	var tickC <-chan time.Time
	if d.cfg.delayThreshold > 0 {
		ticker := time.NewTicker(d.cfg.delayThreshold)
		defer ticker.Stop()
		tickC = ticker.C
	}

	var evictC <-chan time.Time
	if d.cfg.idleTimeout > 0 {
		sweeper := time.NewTicker(d.cfg.evictInterval)
		defer sweeper.Stop()
		evictC = sweeper.C
	}

	for {
		select {
		case <-d.mail.wake():
			if d.drainMail() {
				d.shutdown()
				return
			}
		case <-tickC:
			d.tickFlush()
		case <-evictC:
			d.evictIdle()
		}
	}
}

func (d *dispatcher) drainMail() bool {
	for {
		cmd, ok := d.mail.pop()
		if !ok {
			d.cfg.metrics.setQueueDepth(d.topic, 0)
			return d.mail.isClosed()
		}
		switch c := cmd.(type) {
		case publishCommand:
			d.route(c.pp)
		case flushCommand:
			d.flushAll(c.done)
		}
	}
}

func (d *dispatcher) route(pp *pendingPublish) {
	key := pp.msg.OrderingKey
	entry, ok := d.workers[key]
	if !ok {
		entry = d.spawn(key)
	}
	entry.lastRouted = time.Now()
	d.forward(entry.w, publishCommand{pp: pp})
}

func (d *dispatcher) spawn(key string) *workerEntry {
	w := newBatchWorker(d.topic, key, d.cfg, d.transport, d.stats)
	go w.run()
	entry := &workerEntry{w: w, lastRouted: time.Now()}
	d.workers[key] = entry
	d.stats.workersAdd(1)
	d.cfg.logger.Debug(context.Background(), "batch worker started",
		String("topic", d.topic),
		String("ordering_key", key),
	)
	return entry
}

// forward pushes a command to a registered worker. A registered worker's
// mailbox is open by construction; a refused push means that invariant
// broke, so the command is failed loudly rather than dropped in silence.
func (d *dispatcher) forward(w *batchWorker, cmd command) {
	if w.mail.push(cmd) {
		return
	}
	d.cfg.logger.Error(context.Background(), "worker mailbox closed while registered",
		String("topic", d.topic),
		String("ordering_key", w.key),
	)
	switch c := cmd.(type) {
	case publishCommand:
		c.pp.res.set("", ErrPublisherClosed)
	case flushCommand:
		if c.done != nil {
			close(c.done)
		}
	}
}

// flushAll broadcasts an acknowledged flush to every worker and waits for
// all of them before acknowledging the caller. Workers drain in parallel;
// publishes submitted meanwhile queue in the dispatcher mailbox and are
// routed afterwards.
func (d *dispatcher) flushAll(done chan<- struct{}) {
	start := time.Now()
	acks := make([]chan struct{}, 0, len(d.workers))
	for _, entry := range d.workers {
		ack := make(chan struct{})
		d.forward(entry.w, flushCommand{done: ack})
		acks = append(acks, ack)
	}
	for _, ack := range acks {
		<-ack
	}
	if done != nil {
		close(done)
	}
	d.cfg.metrics.observeFlush(d.topic, time.Since(start))
}

// tickFlush is the delay-threshold firing: broadcast and move on, no acks.
func (d *dispatcher) tickFlush() {
	for _, entry := range d.workers {
		d.forward(entry.w, flushCommand{done: nil})
	}
}

// evictIdle retires workers whose key has gone quiet. A worker is reaped
// only when the dispatcher routed nothing to it for idleTimeout and the
// worker itself reports it has been fully idle at least as long, so no
// queued or in-flight work can be lost. Paused workers stay registered so
// the key keeps rejecting publishes.
func (d *dispatcher) evictIdle() {
	now := time.Now()
	for key, entry := range d.workers {
		if now.Sub(entry.lastRouted) < d.cfg.idleTimeout {
			continue
		}
		if entry.w.state.Load() != workerIdle {
			continue
		}
		if now.Sub(time.Unix(0, entry.w.idleSince.Load())) < d.cfg.idleTimeout {
			continue
		}
		entry.w.mail.close()
		delete(d.workers, key)
		d.stats.workersAdd(-1)
		d.cfg.logger.Debug(context.Background(), "idle batch worker evicted",
			String("topic", d.topic),
			String("ordering_key", key),
		)
	}
}

// shutdown runs the final flush, then retires every worker and waits for
// them to exit. Remaining commands were already drained by drainMail, so
// nothing accepted before Close is abandoned.
func (d *dispatcher) shutdown() {
	d.flushAll(nil)
	for _, entry := range d.workers {
		entry.w.mail.close()
	}
	for key, entry := range d.workers {
		<-entry.w.done
		delete(d.workers, key)
		d.stats.workersAdd(-1)
	}
}
