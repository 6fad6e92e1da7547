package pubsub

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Worker states observed by the dispatcher's eviction sweep.
const (
	workerActive int32 = iota
	workerIdle
	workerPaused
)

// sendOutcome reports a completed transport call back to the worker loop.
type sendOutcome struct {
	b   *batch
	ids []string
	err error
}

// batchWorker owns batching for a single ordering key, or for the shared
// unordered stream when key is empty. All batching state is confined to
// its goroutine; the dispatcher talks to it only through its mailbox.
//
// Ordered workers keep at most one send in flight and pause permanently on
// the first failed batch. Unordered workers send every full batch
// concurrently and treat failures as batch-local.
type batchWorker struct {
	topic     string
	key       string
	ordered   bool
	cfg       *config
	transport Transport
	stats     *pipelineStats

	mail     *mailbox[command]
	sendDone chan sendOutcome
	done     chan struct{}

	// Loop-owned state, touched only by run's goroutine.
	pending   *batch
	inflight  int
	paused    bool
	draining  bool
	flushAcks []chan<- struct{}

	// Published for the dispatcher's eviction sweep and Stats.
	state     atomic.Int32
	idleSince atomic.Int64
}

func newBatchWorker(topic, key string, cfg *config, transport Transport, stats *pipelineStats) *batchWorker {
	w := &batchWorker{
		topic:     topic,
		key:       key,
		ordered:   key != "",
		cfg:       cfg,
		transport: transport,
		stats:     stats,
		mail:      newMailbox[command](),
		sendDone:  make(chan sendOutcome),
		done:      make(chan struct{}),
		pending:   newBatch(),
	}
	w.state.Store(workerActive)
	return w
}

func (w *batchWorker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.mail.wake():
			if w.drainMail() {
				w.shutdown()
				return
			}
		case out := <-w.sendDone:
			w.finishSend(out)
		}
	}
}

// drainMail handles every queued command and reports whether the mailbox
// is closed, which is the shutdown signal.
func (w *batchWorker) drainMail() bool {
	for {
		cmd, ok := w.mail.pop()
		if !ok {
			return w.mail.isClosed()
		}
		w.handle(cmd)
	}
}

func (w *batchWorker) handle(cmd command) {
	switch c := cmd.(type) {
	case publishCommand:
		w.handlePublish(c.pp)
	case flushCommand:
		w.handleFlush(c.done)
	}
	w.advance()
}

func (w *batchWorker) handlePublish(pp *pendingPublish) {
	if w.paused {
		pp.res.set("", ErrOrderingKeyPaused)
		w.cfg.metrics.recordPublished(w.topic, outcomeError, 1)
		return
	}
	w.pending.append(pp)
	w.stats.pendingAdd(1)
}

func (w *batchWorker) handleFlush(done chan<- struct{}) {
	w.draining = true
	if done != nil {
		w.flushAcks = append(w.flushAcks, done)
	}
}

// advance drives the state machine: it starts every send the thresholds or
// an active drain call for, acknowledges flushes once the worker is
// quiescent, and refreshes the state word.
func (w *batchWorker) advance() {
	if !w.paused {
		for w.canSend() && w.wantSend() {
			w.startSend(w.pending.take(w.cfg.countThreshold, w.cfg.byteThreshold))
		}
	}
	// A drain is over once pending is empty; messages arriving afterwards
	// accumulate toward thresholds again even while sends are still in
	// flight. Flush acks additionally wait for those sends to land.
	if w.pending.empty() {
		w.draining = false
	}
	if !w.draining && w.inflight == 0 && len(w.flushAcks) > 0 {
		for _, done := range w.flushAcks {
			close(done)
		}
		w.flushAcks = nil
	}
	w.updateState()
}

func (w *batchWorker) canSend() bool {
	return !w.ordered || w.inflight == 0
}

func (w *batchWorker) wantSend() bool {
	if w.pending.empty() {
		return false
	}
	if w.draining {
		return true
	}
	if w.pending.count() >= w.cfg.countThreshold {
		return true
	}
	return w.cfg.byteThreshold > 0 && w.pending.byteSize() >= w.cfg.byteThreshold
}

func (w *batchWorker) startSend(b *batch) {
	w.inflight++
	w.stats.inflightAdd(1)
	w.stats.pendingAdd(int64(-b.count()))
	go w.send(b)
}

// send runs the transport call off the worker loop. The recover guard turns
// a panicking transport into an ordinary failed batch instead of tearing
// down the process.
func (w *batchWorker) send(b *batch) {
	defer func() {
		if rec := recover(); rec != nil {
			w.sendDone <- sendOutcome{b: b, err: fmt.Errorf("%w: %v", ErrSendAborted, rec)}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.publishTimeout)
	defer cancel()

	var span trace.Span
	if w.cfg.instrumentation != nil {
		ctx, span = w.cfg.instrumentation.startBatchSpan(ctx, w.topic, w.key, b.count(), b.byteSize())
	}

	start := time.Now()
	ids, err := w.transport.PublishBatch(ctx, w.topic, b.messages())
	w.cfg.metrics.recordBatch(w.topic, b.count(), b.byteSize(), time.Since(start), err)

	if w.cfg.instrumentation != nil {
		w.cfg.instrumentation.endBatchSpan(span, err)
	}

	w.sendDone <- sendOutcome{b: b, ids: ids, err: err}
}

func (w *batchWorker) finishSend(out sendOutcome) {
	w.inflight--
	w.stats.inflightAdd(-1)

	err := out.err
	if err == nil && len(out.ids) != out.b.count() {
		err = fmt.Errorf("%w: %d messages, %d ids", ErrTransportResponse, out.b.count(), len(out.ids))
	}

	if err != nil {
		w.resolveBatch(out.b, nil, err)
		w.cfg.logger.Error(context.Background(), "batch publish failed",
			String("topic", w.topic),
			String("ordering_key", w.key),
			Int("messages", out.b.count()),
			Err(err),
		)
		if w.ordered {
			w.pause()
		}
	} else {
		w.resolveBatch(out.b, out.ids, nil)
	}
	w.advance()
}

// pause is the terminal failure state of an ordered key. The transport
// error belongs to the batch that failed; everything still queued behind it
// was never sent, so it is rejected with ErrOrderingKeyPaused, the same
// error later publishes get. There is no resume; callers decide what a
// safe restart means for their stream by building a new publisher.
func (w *batchWorker) pause() {
	w.paused = true
	rest := w.pending.takeAll()
	w.stats.pendingAdd(int64(-rest.count()))
	w.resolveBatch(rest, nil, ErrOrderingKeyPaused)
	w.stats.pausedAdd(1)
	w.cfg.logger.Warn(context.Background(), "ordering key paused",
		String("topic", w.topic),
		String("ordering_key", w.key),
		Int("rejected_pending", rest.count()),
	)
}

func (w *batchWorker) resolveBatch(b *batch, ids []string, err error) {
	if b.empty() {
		return
	}
	if err != nil {
		for _, pp := range b.items {
			pp.res.set("", err)
		}
		w.cfg.metrics.recordPublished(w.topic, outcomeError, b.count())
		return
	}
	for i, pp := range b.items {
		pp.res.set(ids[i], nil)
	}
	w.cfg.metrics.recordPublished(w.topic, outcomeSuccess, b.count())
}

// shutdown drains everything still pending and waits for in-flight sends,
// so Close never abandons accepted messages.
func (w *batchWorker) shutdown() {
	w.draining = true
	w.advance()
	for w.inflight > 0 {
		w.finishSend(<-w.sendDone)
	}
}

func (w *batchWorker) updateState() {
	switch {
	case w.paused:
		w.state.Store(workerPaused)
	case w.pending.empty() && w.inflight == 0:
		if w.state.Swap(workerIdle) != workerIdle {
			w.idleSince.Store(time.Now().UnixNano())
		}
	default:
		w.state.Store(workerActive)
	}
}
