package reader

import (
	"fmt"
	"strconv"
	"strings"
)

// commandQueue is a bounded FIFO of wire-ready command byte slices.
// Insertion order is send order; the drain loop pops one entry per tick.
// A full queue rejects the enqueue instead of blocking: the adapter link
// can only sustain a few commands per second, so backpressure here would
// stall the caller for no benefit.
type commandQueue struct {
	pending chan []byte
}

func newCommandQueue(depth int) *commandQueue {
	return &commandQueue{pending: make(chan []byte, depth)}
}

// push formats cmd into its wire form — command body, optional single
// expected-reply-count digit, carriage return — and appends it. Returns
// ErrQueueOverflow when the queue is at capacity; the command is dropped
// and the queue is left unchanged.
func (q *commandQueue) push(cmd string, expectedReplies int) error {
	wire := strings.TrimSpace(cmd)
	if expectedReplies != 0 {
		wire += strconv.Itoa(expectedReplies)
	}
	wire += "\r"

	select {
	case q.pending <- []byte(wire):
		return nil
	default:
		return fmt.Errorf("%w: dropping %q", ErrQueueOverflow, cmd)
	}
}

// pop removes and returns the oldest pending command, if any.
func (q *commandQueue) pop() ([]byte, bool) {
	select {
	case wire := <-q.pending:
		return wire, true
	default:
		return nil, false
	}
}

func (q *commandQueue) len() int {
	return len(q.pending)
}
