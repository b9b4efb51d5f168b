package simbus

import (
	"runtime"
	"sync/atomic"
	"time"

	"softi2c-go/softi2c"
)

// Clock implements softi2c.TickSource for simulations. Run starts a pump
// goroutine that calls the given functions once per tick, in order, for as
// long as the source is enabled. Put the engine's Tick first, then slave
// steps and recorders, so every tick ends with a settled bus.
type Clock struct {
	enabled atomic.Bool
	batch   atomic.Bool // a tick batch is mid-flight
	quit    chan struct{}
	done    chan struct{}
}

func NewClock() *Clock {
	return &Clock{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (c *Clock) Enable()  { c.enabled.Store(true) }
func (c *Clock) Disable() { c.enabled.Store(false) }

// Enabled reports whether ticks are currently being delivered.
func (c *Clock) Enabled() bool { return c.enabled.Load() }

// Run starts the pump goroutine. Call Stop when done with the bus.
func (c *Clock) Run(fns ...func()) {
	go func() {
		defer close(c.done)
		for {
			select {
			case <-c.quit:
				return
			default:
			}
			if c.enabled.Load() {
				c.batch.Store(true)
				for _, fn := range fns {
					fn()
				}
				c.batch.Store(false)
			} else {
				runtime.Gosched()
			}
		}
	}()
}

// Stop terminates the pump and waits for it to exit.
func (c *Clock) Stop() {
	close(c.quit)
	<-c.done
}

// WaitIdle parks until the engine has disabled ticking and the last tick
// batch has fully run, e.g. for the power-up stop cycle to drain or before
// inspecting recorders and slaves after a transfer.
func (c *Clock) WaitIdle() {
	for c.enabled.Load() || c.batch.Load() {
		time.Sleep(10 * time.Microsecond)
	}
}

var _ softi2c.TickSource = (*Clock)(nil)
