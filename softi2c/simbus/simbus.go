// Package simbus simulates an open-drain I2C bus on the host: wires with
// pull-ups, master-side pins, a programmable slave, a waveform recorder
// and a tick pump. It exists so the engine's electrical behaviour can be
// exercised by ordinary Go tests and host demos, no hardware attached.
//
// Everything here runs on the pump goroutine once ticking is active; setup
// happens before Clock.Run and results are read after a transfer returns,
// so the types carry no locks of their own.
package simbus

import "softi2c-go/softi2c"

// Wire is one open-drain net. Its level is High unless some attached port
// pulls it low.
type Wire struct {
	low []bool
}

func NewWire() *Wire {
	return &Wire{}
}

// Port attaches a new driver to the wire, initially released.
func (w *Wire) Port() *Port {
	w.low = append(w.low, false)
	return &Port{w: w, i: len(w.low) - 1}
}

// Level resolves the wire against its pull-up.
func (w *Wire) Level() softi2c.Level {
	for _, l := range w.low {
		if l {
			return softi2c.Low
		}
	}
	return softi2c.High
}

// Port is one driver attached to a Wire.
type Port struct {
	w *Wire
	i int
}

// DriveLow pulls the wire low (true) or releases it (false).
func (p *Port) DriveLow(v bool) {
	p.w.low[p.i] = v
}

// Pin adapts a wire port to softi2c.Line the way a GPIO pin used
// open-drain behaves: direction Input releases the wire and direction
// Output with a cleared latch pulls it low.
type Pin struct {
	port *Port
	dir  softi2c.Direction
	out  softi2c.Level

	// Actions counts latch writes and direction changes, for tests that
	// assert the hardware was not touched. Reads are passive and not
	// counted.
	Actions int
}

func NewPin(w *Wire) *Pin {
	return &Pin{port: w.Port(), dir: softi2c.Input, out: softi2c.High}
}

func (p *Pin) Set() {
	p.out = softi2c.High
	p.Actions++
	p.apply()
}

func (p *Pin) Clear() {
	p.out = softi2c.Low
	p.Actions++
	p.apply()
}

func (p *Pin) SetDirection(d softi2c.Direction) {
	p.dir = d
	p.Actions++
	p.apply()
}

func (p *Pin) Read() softi2c.Level {
	return p.port.w.Level()
}

func (p *Pin) apply() {
	p.port.DriveLow(p.dir == softi2c.Output && p.out == softi2c.Low)
}

var _ softi2c.Line = (*Pin)(nil)
