// Package reader implements the client-side protocol engine for
// ELM327-class OBD-II adapters: a rate-limited command queue, a response
// framer and decode dispatcher, and a polling scheduler, behind a facade
// that owns the connection lifecycle.
//
// The Reader delegates the physical byte stream to a Transport obtained
// from its Dialer. All transport I/O happens on two internal goroutines —
// the drain loop (writes) and the read loop (reads) — so application
// callers never touch the transport directly and never block on it.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/openvehiclelab/elmlink/elm"
	"github.com/openvehiclelab/elmlink/pid"
)

// Reader talks to one ELM327-class adapter over a byte-stream transport.
// It turns application requests into correctly throttled command bytes and
// incoming reply chunks into typed readings delivered on the Data channel.
type Reader struct {
	cfg   Config
	table pid.Table

	mu        sync.Mutex
	transport Transport
	queue     *commandQueue
	protocol  string
	connected bool
	closed    bool

	// Poller state; commands are resolved from names at add time.
	pollers  []string
	pollStop chan struct{}
	pollDone chan struct{}

	// Loop lifecycle; recreated on every Connect.
	drainStop chan struct{}
	drainDone chan struct{}
	readDone  chan struct{}

	dataChan  chan Reply
	connChan  chan struct{}
	errChan   chan error
	debugChan chan string
}

// New creates a Reader from a built Config. No connection is made until
// Connect is called.
func New(cfg Config) (*Reader, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Reader{
		cfg:      cfg,
		table:    cfg.Table,
		protocol: cfg.Protocol,
		// Buffered so a slow consumer delays nothing; full channels drop.
		dataChan:  make(chan Reply, 64),
		connChan:  make(chan struct{}, 1),
		errChan:   make(chan error, 16),
		debugChan: make(chan string, 32),
	}, nil
}

// Connect dials the transport, starts the drain and read loops, and pushes
// the adapter initialization sequence through the command queue: reset,
// echo/linefeeds/spaces/headers off, adaptive timing, protocol selection.
// The connected event is emitted once the sequence is queued.
//
// After a transport failure or Disconnect, Connect may be called again;
// each connection gets fresh timers and a fresh queue.
func (r *Reader) Connect(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrAlreadyClosed
	}
	if r.connected {
		r.mu.Unlock()
		return ErrAlreadyConnected
	}
	protocol := r.protocol
	r.mu.Unlock()

	transport, err := r.cfg.Dialer.Dial(ctx)
	if err != nil {
		return fmt.Errorf("dial transport: %w", err)
	}
	if transport == nil {
		return fmt.Errorf("dial transport: %w", ErrNotConnected)
	}

	queue := newCommandQueue(r.cfg.QueueDepth)
	drainStop := make(chan struct{})
	drainDone := make(chan struct{})
	readDone := make(chan struct{})

	r.mu.Lock()
	r.transport = transport
	r.queue = queue
	r.connected = true
	r.drainStop = drainStop
	r.drainDone = drainDone
	r.readDone = readDone
	r.mu.Unlock()

	go r.drainLoop(transport, queue, drainStop, drainDone)
	go r.readLoop(transport, readDone)

	for _, cmd := range elm.InitSequence(protocol) {
		if err := queue.push(cmd, 0); err != nil {
			return fmt.Errorf("queue init command %q: %w", cmd, err)
		}
	}

	select {
	case r.connChan <- struct{}{}:
	default:
	}
	r.debugf("connected, %d init commands queued", queue.len())
	return nil
}

// Disconnect tears down the connection: the drain timer and poller are
// cancelled synchronously before the transport is closed, so no further
// writes or poll ticks occur after it returns. The Reader can be
// reconnected afterwards.
func (r *Reader) Disconnect() error {
	r.mu.Lock()
	if !r.connected {
		r.mu.Unlock()
		return ErrNotConnected
	}
	drainDone, readDone := r.drainDone, r.readDone
	r.mu.Unlock()

	r.teardown(nil)
	<-drainDone
	<-readDone
	return nil
}

// Close disconnects if needed and marks the Reader unusable.
func (r *Reader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrAlreadyClosed
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.Disconnect(); err != nil && !errors.Is(err, ErrNotConnected) {
		return err
	}
	return nil
}

// IsConnected reports whether a connection is currently established.
func (r *Reader) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

// SetProtocol validates and stores the protocol selector, a single digit
// '0' (automatic) through '9'. When connected, the corresponding select
// command is also queued to the adapter.
func (r *Reader) SetProtocol(p string) error {
	if !elm.IsProtocol(p) {
		return fmt.Errorf("%w: %q", ErrInvalidProtocol, p)
	}

	r.mu.Lock()
	r.protocol = p
	connected, queue := r.connected, r.queue
	r.mu.Unlock()

	if connected {
		return queue.push(elm.CmdSelectProtocol+p, 0)
	}
	return nil
}

// GetProtocol returns the current protocol selector.
func (r *Reader) GetProtocol() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.protocol
}

// Write queues a raw command for transmission.
func (r *Reader) Write(cmd string) error {
	return r.enqueue(cmd, 0)
}

// WriteExpecting queues a command with an expected-reply-count suffix,
// which tells the adapter to return early after that many replies.
func (r *Reader) WriteExpecting(cmd string, replies int) error {
	if replies < 0 || replies > 9 {
		return fmt.Errorf("expected reply count %d out of range 0-9", replies)
	}
	return r.enqueue(cmd, replies)
}

// RequestValueByName resolves a sensor name through the parameter table
// and queues a one-shot request for it, expecting a single reply.
func (r *Reader) RequestValueByName(name string) error {
	rec, err := r.table.ByName(name)
	if err != nil {
		return err
	}
	return r.enqueue(rec.Command(), 1)
}

// Data delivers decoded readings. The channel is buffered; readings are
// dropped when the consumer lags, never the other way around.
func (r *Reader) Data() <-chan Reply {
	return r.dataChan
}

// Connected signals each successful connection establishment.
func (r *Reader) Connected() <-chan struct{} {
	return r.connChan
}

// Errors delivers asynchronous failures: write errors from the drain loop,
// malformed inbound frames, and the terminal transport-failure error.
func (r *Reader) Errors() <-chan error {
	return r.errChan
}

// Debug delivers low-level protocol trace messages.
func (r *Reader) Debug() <-chan string {
	return r.debugChan
}

func (r *Reader) enqueue(cmd string, expectedReplies int) error {
	r.mu.Lock()
	if !r.connected {
		r.mu.Unlock()
		return ErrNotConnected
	}
	queue := r.queue
	r.mu.Unlock()

	return queue.push(cmd, expectedReplies)
}

// drainLoop writes exactly one queued command per tick. Consecutive write
// failures up to the configured limit are reported and tolerated; at the
// limit the connection is declared lost and torn down.
func (r *Reader) drainLoop(transport Transport, queue *commandQueue, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.cfg.DrainInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			wire, ok := queue.pop()
			if !ok {
				continue
			}
			if _, err := transport.Write(wire); err != nil {
				failures++
				r.reportError(fmt.Errorf("write %q: %w", wire, err))
				if failures >= r.cfg.WriteFailureLimit {
					go r.teardown(fmt.Errorf("%w: %d consecutive write failures", ErrTransportFailure, failures))
					return
				}
				continue
			}
			failures = 0
			r.debugf("sent %q", wire)
		}
	}
}

// readLoop is the only goroutine that reads from the transport. Chunks go
// through the framer; each complete frame is decoded and delivered.
func (r *Reader) readLoop(transport Transport, done chan<- struct{}) {
	defer close(done)

	framer := &elm.Framer{}
	buf := make([]byte, 4096)
	for {
		n, err := transport.Read(buf)
		if n > 0 {
			for _, frame := range framer.Feed(buf[:n]) {
				r.dispatch(frame)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && r.IsConnected() {
				r.reportError(fmt.Errorf("read: %w", err))
			}
			return
		}
	}
}

// dispatch decodes one frame and delivers the result. A frame that fails
// to decode is reported and dropped; later frames are unaffected.
func (r *Reader) dispatch(frame string) {
	reply, err := Decode(r.table, frame)
	if err != nil {
		r.reportError(err)
		return
	}
	r.debugf("frame %q decoded", frame)

	select {
	case r.dataChan <- reply:
	default:
	}
}

// teardown is the single connection-loss path, shared by Disconnect and
// the drain loop's failure limit. It runs at most once per connection.
func (r *Reader) teardown(reason error) {
	r.mu.Lock()
	if !r.connected {
		r.mu.Unlock()
		return
	}
	r.connected = false
	transport := r.transport
	drainStop := r.drainStop
	r.transport = nil
	r.pollers = nil
	r.mu.Unlock()

	r.stopPolling()
	close(drainStop)
	// Closing the transport unblocks the read loop's pending Read.
	if err := transport.Close(); err != nil {
		r.reportError(fmt.Errorf("close transport: %w", err))
	}

	if reason != nil {
		r.reportError(reason)
		r.debugf("connection lost: %v", reason)
	}
}

func (r *Reader) reportError(err error) {
	select {
	case r.errChan <- err:
	default:
	}
}

func (r *Reader) debugf(format string, args ...any) {
	select {
	case r.debugChan <- fmt.Sprintf(format, args...):
	default:
	}
}
