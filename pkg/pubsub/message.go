package pubsub

// Message is a single unit of data handed to Publish. Messages with the
// same non-empty OrderingKey are delivered to the transport in submission
// order; messages with an empty OrderingKey are batched together and may
// be sent concurrently.
type Message struct {
	// Data is the message payload.
	Data []byte

	// OrderingKey groups messages that must be published in order.
	// Empty means unordered.
	OrderingKey string

	// Attributes carries optional key-value metadata.
	Attributes map[string]string
}

// size is the byte footprint used against the byte threshold.
func (m *Message) size() int {
	n := len(m.Data) + len(m.OrderingKey)
	for k, v := range m.Attributes {
		n += len(k) + len(v)
	}
	return n
}

// pendingPublish pairs a message with the result its caller is holding.
// The size is computed once at submission.
type pendingPublish struct {
	msg  *Message
	res  *PublishResult
	size int
}
