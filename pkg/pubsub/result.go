package pubsub

import (
	"context"
	"sync"
)

// PublishResult is the future returned by Publish. It resolves exactly once
// with either the server-assigned message ID or an error. Dropping a
// PublishResult without reading it is safe; resolution never blocks.
type PublishResult struct {
	ready chan struct{}
	once  sync.Once
	id    string
	err   error
}

func newPublishResult() *PublishResult {
	return &PublishResult{ready: make(chan struct{})}
}

// resolvedResult returns an already-failed result for local rejections.
func resolvedResult(err error) *PublishResult {
	r := newPublishResult()
	r.set("", err)
	return r
}

// Get blocks until the result resolves or ctx is done. A ctx error does not
// cancel the publish; the message may still be delivered.
func (r *PublishResult) Get(ctx context.Context) (string, error) {
	select {
	case <-r.ready:
		return r.id, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Ready is closed once the result has resolved. After Ready, Get returns
// without blocking.
func (r *PublishResult) Ready() <-chan struct{} {
	return r.ready
}

func (r *PublishResult) set(id string, err error) {
	r.once.Do(func() {
		r.id = id
		r.err = err
		close(r.ready)
	})
}
