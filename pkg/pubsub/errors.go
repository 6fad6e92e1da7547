package pubsub

import "errors"

var (
	// ErrPublisherClosed indicates the publisher has been closed.
	ErrPublisherClosed = errors.New("pubsub publisher is closed")

	// ErrNilMessage indicates Publish was called with a nil message.
	ErrNilMessage = errors.New("message must not be nil")

	// ErrMessageTooLarge indicates a single message exceeds the byte
	// threshold and can never fit in a batch.
	ErrMessageTooLarge = errors.New("message exceeds the batch byte threshold")

	// ErrOrderingKeyPaused indicates publishing to an ordering key that was
	// paused by an earlier failed batch. The key stays paused for the
	// lifetime of the publisher.
	ErrOrderingKeyPaused = errors.New("ordering key is paused after a failed publish")

	// ErrTransportResponse indicates the transport reported success but
	// returned the wrong number of message IDs.
	ErrTransportResponse = errors.New("transport returned an invalid publish response")

	// ErrSendAborted indicates a batch send aborted before completing,
	// typically because the transport panicked.
	ErrSendAborted = errors.New("batch send aborted")

	// ErrNilTransport indicates no transport was provided.
	ErrNilTransport = errors.New("transport must not be nil")

	// ErrEmptyTopic indicates no topic was provided.
	ErrEmptyTopic = errors.New("topic must not be empty")
)
