package kafka

import "errors"

var (
	// ErrNoBrokers indicates the broker list was empty.
	ErrNoBrokers = errors.New("at least one broker address is required")

	// ErrNilClient indicates a nil sarama client was provided.
	ErrNilClient = errors.New("kafka client cannot be nil")

	// ErrTransportClosed indicates the transport has been closed.
	ErrTransportClosed = errors.New("kafka transport is closed")
)
