package reader

import "errors"

var (
	// ErrNoDialer is returned when a Reader is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order
	// to establish a connection to the adapter.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotConnected is returned when a command is enqueued or polling is
	// started while no adapter connection is established.
	ErrNotConnected = errors.New("reader not connected")

	// ErrAlreadyConnected is returned when Connect is called on a Reader
	// that already holds an established connection.
	ErrAlreadyConnected = errors.New("reader already connected")

	// ErrAlreadyClosed is returned when an operation is attempted on a
	// Reader that has been closed.
	ErrAlreadyClosed = errors.New("reader already closed")

	// ErrQueueOverflow is returned when the command queue is at capacity.
	// The offending command is dropped; the queue is unchanged.
	ErrQueueOverflow = errors.New("command queue overflow")

	// ErrMalformedFrame is returned when a reply frame cannot be tokenized
	// into hex bytes. The frame is dropped; later frames still decode.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrUnsupportedWidth is returned when a table record declares a data
	// width the dispatcher cannot route (anything but 1, 2, 4 or 8 bytes).
	ErrUnsupportedWidth = errors.New("unsupported PID byte width")

	// ErrInvalidProtocol is returned when a protocol selector is not a
	// single digit '0' through '9'.
	ErrInvalidProtocol = errors.New("invalid protocol selector")

	// ErrTransportFailure marks the terminal error emitted after repeated
	// consecutive write failures. The connection is torn down and must be
	// explicitly re-established; there is no automatic retry.
	ErrTransportFailure = errors.New("transport failure")
)
