// Package softi2c implements a bit-banged I2C master on two GPIO lines.
//
// A periodic timer interrupt must call (*Engine).Tick at one half the
// desired bus clock period; for a 100kHz bus, once every 5 microseconds.
// The engine enables and disables the injected tick source itself, so no
// ticks fire while the bus is idle.
//
// Ownership of the engine state follows a strict handoff: the calling task
// owns it before the tick source is enabled and again after the completion
// signal arrives; the tick interrupt owns it for the whole time in between.
// Neither side ever touches it while the other holds it, so no locking is
// needed. The interrupt side never blocks; the task side blocks only in
// Transfer.
//
// Single master, 7-bit addressing. A slave may stretch the clock for as
// long as it likes: the engine waits indefinitely, so callers that need
// bounded latency must layer a watchdog on top.
package softi2c

import "sync/atomic"

// Level is the electrical level of a bus line.
type Level uint8

const (
	Low Level = iota
	High
)

// Direction configures a line's pin driver.
type Direction uint8

const (
	Input Direction = iota
	Output
)

// Line is a single physical bus line (SDA or SCL). Implementations wrap
// one GPIO pin. The engine models open-drain signalling with the pin
// driver alone: direction Input releases the line to its pulled-up level,
// and Output with a cleared latch pulls it low, so a Line needs no
// dedicated open-drain mode.
type Line interface {
	Set()
	Clear()
	Read() Level
	SetDirection(Direction)
}

// release floats the line so the pull-up takes it high.
func release(l Line) {
	l.SetDirection(Input)
}

// drivelow actively pulls the line low. The latch is cleared on both sides
// of the direction change so the line never drives high.
func drivelow(l Line) {
	l.Clear()
	l.SetDirection(Output)
	l.Clear()
}

// TickSource is the periodic interrupt feeding (*Engine).Tick. Enable and
// Disable must be idempotent and safe to call from interrupt context.
type TickSource interface {
	Enable()
	Disable()
}

// Engine is one bit-banged I2C master instance.
type Engine struct {
	sda  Line
	scl  Line
	tick TickSource

	// Blocking handoff between the caller and the tick interrupt. The
	// channel wakes the caller; completed tells a stale wakeup (left over
	// from the power-up stop cycle) from the real one.
	done      chan struct{}
	completed atomic.Bool

	// stopPending is true while an issued stop condition has not yet
	// completed. It is the one field both contexts may observe at the same
	// time: the power-up stop cycle can still be ticking when the first
	// caller arrives.
	stopPending atomic.Bool

	// Everything below is owned by whichever context currently holds the
	// engine per the handoff contract above.
	addr    uint8
	read    bool
	buf     []byte
	count   int
	ph      phase
	start   startStep
	stop    stopStep
	tx      txStep
	rx      rxStep
	stretch bool
	active  bool
}

// New creates an engine on the given lines. It asserts the idle levels
// (SDA released, SCL driven low) and arms a power-up stop cycle so the bus
// starts from a known state; the tick source is enabled to let that cycle
// drain, and the first Transfer parks until it has.
func New(sda, scl Line, tick TickSource) *Engine {
	e := &Engine{
		sda:  sda,
		scl:  scl,
		tick: tick,
		done: make(chan struct{}, 1),
	}
	release(sda)
	drivelow(scl)
	e.ph = phaseStop
	e.stop = stopSDALow
	e.stopPending.Store(true)
	tick.Enable()
	return e
}

// wait suspends the caller until the interrupt side posts.
func (e *Engine) wait() {
	<-e.done
}

// post wakes the blocked caller. Safe from interrupt context: it never
// blocks, and a second post before the waiter runs collapses into one.
func (e *Engine) post() {
	select {
	case e.done <- struct{}{}:
	default:
	}
}
