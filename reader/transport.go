package reader

import (
	"context"
	"fmt"
	"io"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=reader

// Transport represents an established, bidirectional byte stream to an
// ELM327-class adapter.
//
// A Transport is assumed to be already connected and ready for use. Typical
// implementations include serial ports (Bluetooth RFCOMM channels and USB
// adapters both present as serial devices), TCP bridges to WiFi adapters,
// or in-memory fakes used for testing. The Reader never initiates device
// discovery or pairing; that belongs to whoever built the Transport.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to an adapter.
//
// Dialer abstracts how the connection is created and is used on every
// Connect call, so a Reader can be reconnected after a transport failure
// without rebuilding it.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may block and
	// should respect cancellation and deadlines provided by the context.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens an adapter over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. "/dev/rfcomm0" or "/dev/ttyUSB0".
	PortName string
	// BaudRate defaults to 38400, the ELM327 factory rate.
	BaudRate int
}

// Dial implements the Dialer interface.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	baud := d.BaudRate
	if baud == 0 {
		baud = 38400
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.PortName, err)
	}
	return port, nil
}
