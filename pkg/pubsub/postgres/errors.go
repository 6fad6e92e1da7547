package postgres

import "errors"

var (
	// ErrEmptyDSN is returned when a transport is created without a connection string.
	ErrEmptyDSN = errors.New("postgres: dsn cannot be empty")

	// ErrNilPool is returned when a transport is created from a nil pool.
	ErrNilPool = errors.New("postgres: pool cannot be nil")

	// ErrTransportClosed is returned by operations on a closed transport.
	ErrTransportClosed = errors.New("postgres: transport is closed")
)
