package rabbitmq

import "errors"

var (
	// ErrEmptyURL indicates no AMQP URL was provided.
	ErrEmptyURL = errors.New("rabbitmq url is required")

	// ErrTransportClosed indicates the transport has been closed.
	ErrTransportClosed = errors.New("rabbitmq transport is closed")

	// ErrPublishNacked indicates the broker refused a message, so the whole
	// batch is failed.
	ErrPublishNacked = errors.New("rabbitmq broker nacked the publish")
)
