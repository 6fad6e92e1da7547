package pubsub

// batch is an ordered collection of pending publishes with a running byte
// total. Workers accumulate into one batch per key and carve send-sized
// batches out of it with take.
type batch struct {
	items     []*pendingPublish
	byteTotal int
}

func newBatch() *batch {
	return &batch{}
}

func (b *batch) append(pp *pendingPublish) {
	b.items = append(b.items, pp)
	b.byteTotal += pp.size
}

func (b *batch) count() int {
	return len(b.items)
}

func (b *batch) byteSize() int {
	return b.byteTotal
}

func (b *batch) empty() bool {
	return len(b.items) == 0
}

// take drains up to maxCount messages and maxBytes bytes into a new batch,
// preserving order. A zero limit means unlimited on that dimension. A
// non-empty batch always yields at least one message so a send can make
// progress.
func (b *batch) take(maxCount, maxBytes int) *batch {
	out := newBatch()
	for len(b.items) > 0 {
		pp := b.items[0]
		if maxCount > 0 && out.count() >= maxCount {
			break
		}
		if maxBytes > 0 && out.count() > 0 && out.byteTotal+pp.size > maxBytes {
			break
		}
		out.append(pp)
		b.items[0] = nil
		b.items = b.items[1:]
		b.byteTotal -= pp.size
	}
	if len(b.items) == 0 {
		b.items = nil
	}
	return out
}

// takeAll drains the whole batch.
func (b *batch) takeAll() *batch {
	return b.take(0, 0)
}

// messages projects the batch into the slice handed to the transport.
func (b *batch) messages() []*Message {
	msgs := make([]*Message, len(b.items))
	for i, pp := range b.items {
		msgs[i] = pp.msg
	}
	return msgs
}
