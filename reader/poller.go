package reader

import (
	"time"
)

// AddPoller resolves a sensor name through the parameter table and adds
// its command to the active poller set. Adding a name twice is a no-op;
// set order is insertion order.
func (r *Reader) AddPoller(name string) error {
	rec, err := r.table.ByName(name)
	if err != nil {
		return err
	}
	cmd := rec.Command()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.pollers {
		if existing == cmd {
			return nil
		}
	}
	r.pollers = append(r.pollers, cmd)
	return nil
}

// RemovePoller removes a sensor from the active poller set.
func (r *Reader) RemovePoller(name string) error {
	rec, err := r.table.ByName(name)
	if err != nil {
		return err
	}
	cmd := rec.Command()

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.pollers {
		if existing == cmd {
			r.pollers = append(r.pollers[:i], r.pollers[i+1:]...)
			return nil
		}
	}
	return nil
}

// ClearPollers empties the active poller set. Ticks of a running poller
// then enqueue nothing.
func (r *Reader) ClearPollers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pollers = nil
}

// Pollers returns a copy of the active poller command set, in set order.
func (r *Reader) Pollers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.pollers))
	copy(out, r.pollers)
	return out
}

// StartPolling begins periodic polling of the active set. Every tick
// enqueues one poll command per set entry, in set order, each expecting
// exactly one reply.
//
// A non-positive interval selects the default: the set size times twice
// the drain period, which leaves every second drain slot free for manual
// requests to interleave. Starting while already polling restarts the
// scheduler with the new interval; the previous timer is cancelled first,
// so timers never leak.
func (r *Reader) StartPolling(interval time.Duration) error {
	r.stopPolling()

	r.mu.Lock()
	if !r.connected {
		r.mu.Unlock()
		return ErrNotConnected
	}
	if interval <= 0 {
		interval = defaultPollInterval(len(r.pollers), r.cfg.DrainInterval)
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	r.pollStop, r.pollDone = stop, done
	r.mu.Unlock()

	go r.pollLoop(interval, stop, done)
	return nil
}

// StopPolling cancels the poll timer synchronously: no tick fires after it
// returns. Idempotent.
func (r *Reader) StopPolling() {
	r.stopPolling()
}

func (r *Reader) stopPolling() {
	r.mu.Lock()
	stop, done := r.pollStop, r.pollDone
	r.pollStop, r.pollDone = nil, nil
	r.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (r *Reader) pollLoop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, cmd := range r.Pollers() {
				if err := r.enqueue(cmd, 1); err != nil {
					r.reportError(err)
				}
			}
		}
	}
}

// defaultPollInterval spaces a full sweep of n pollers so that at most
// every other drain tick carries a poll command. An empty set still gets
// a sane period rather than a zero ticker.
func defaultPollInterval(n int, drain time.Duration) time.Duration {
	if n == 0 {
		n = 1
	}
	return time.Duration(n) * 2 * drain
}
