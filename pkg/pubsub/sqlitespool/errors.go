package sqlitespool

import "errors"

var (
	// ErrEmptyPath is returned when a transport is created without a database file path.
	ErrEmptyPath = errors.New("sqlitespool: path cannot be empty")

	// ErrNilDrainFunc is returned when Drain is called without a forward function.
	ErrNilDrainFunc = errors.New("sqlitespool: drain function cannot be nil")

	// ErrTransportClosed is returned by operations on a closed transport.
	ErrTransportClosed = errors.New("sqlitespool: transport is closed")
)
