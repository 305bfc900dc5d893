// Package shutdown implements the process-wide cooperative cancellation
// flag described in §4.10/§5: a single atomic boolean, set from a signal
// handler reacting to SIGINT/SIGTERM, exposed through one narrow getter.
// The pacer polls it before each chunk; the scheduler is fed from the
// pacer's callback, so it stops when the pacer does. Neither owns it.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Coordinator owns the shutdown flag for one run. Handler installation is
// idempotent and scoped to the Coordinator's lifetime via Stop.
type Coordinator struct {
	flag    atomic.Bool
	sigCh   chan os.Signal
	once    sync.Once
	stopped chan struct{}
}

// New installs a SIGINT/SIGTERM handler and returns a Coordinator. Call
// Stop to release the handler when the run ends.
func New() *Coordinator {
	c := &Coordinator{
		sigCh:   make(chan os.Signal, 1),
		stopped: make(chan struct{}),
	}
	signal.Notify(c.sigCh, syscall.SIGINT, syscall.SIGTERM)
	go c.watch()
	return c
}

func (c *Coordinator) watch() {
	select {
	case <-c.sigCh:
		c.flag.Store(true)
	case <-c.stopped:
	}
}

// Requested reports whether shutdown has been requested, either by signal
// or by a direct call to Request. Safe to poll from any goroutine.
func (c *Coordinator) Requested() bool {
	return c.flag.Load()
}

// Request sets the shutdown flag directly, e.g. from a test or from a
// supervising orchestrator that decided to stop the run for its own reasons.
func (c *Coordinator) Request() {
	c.flag.Store(true)
}

// Stop releases the signal handler. Idempotent.
func (c *Coordinator) Stop() {
	c.once.Do(func() {
		signal.Stop(c.sigCh)
		close(c.stopped)
	})
}
