package pubsub

import "context"

// Transport delivers assembled batches to a backend.
//
// PublishBatch is atomic from the pipeline's perspective: either every
// message in msgs was accepted and ids holds one server-assigned ID per
// message in the same order, or the whole batch failed with err. Partial
// results are not representable. Implementations may retry internally;
// the pipeline never does.
type Transport interface {
	PublishBatch(ctx context.Context, topic string, msgs []*Message) ([]string, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, topic string, msgs []*Message) ([]string, error)

// PublishBatch calls f.
func (f TransportFunc) PublishBatch(ctx context.Context, topic string, msgs []*Message) ([]string, error) {
	return f(ctx, topic, msgs)
}

// command is the closed set of control messages flowing through dispatcher
// and worker mailboxes. Timer ticks are not commands; they arrive on ticker
// channels in the owning goroutine's select.
type command interface {
	isCommand()
}

// publishCommand carries one accepted message toward its batch worker.
type publishCommand struct {
	pp *pendingPublish
}

// flushCommand asks the receiver to drain everything it holds. done, when
// non-nil, is closed once the drain completes; timer-driven flushes pass
// nil and do not wait.
type flushCommand struct {
	done chan<- struct{}
}

func (publishCommand) isCommand() {}
func (flushCommand) isCommand()   {}
