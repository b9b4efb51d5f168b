package softi2c

import (
	"tinygo.org/x/drivers"

	"softi2c-go/errcode"
)

// Request describes one transfer.
type Request struct {
	// Addr is the 7-bit target address.
	Addr uint8
	// Read selects the transfer direction: false writes Buf to the slave,
	// true fills Buf from it.
	Read bool
	// Buf is the data to send or the space to receive into. Its length is
	// the transfer length and must be at least 1.
	Buf []byte
	// SendStop issues a stop condition at the end of the transfer. Leave
	// it false to hold the bus for a repeated start.
	SendStop bool
}

// Transfer runs one transfer and blocks until it completes, returning the
// number of bytes transferred. A zero-length request fails with
// errcode.InvalidArgument before any bus activity. An unacknowledged
// address or data byte fails with errcode.IOError once the bus has been
// returned to a safe state.
//
// Only one transfer may be in flight at a time; Transfer parks until a
// previously issued stop condition, including the power-up stop cycle, has
// drained. Calling Transfer concurrently from several goroutines is a
// caller bug and panics.
func (e *Engine) Transfer(req Request) (int, error) {
	if len(req.Buf) == 0 {
		return 0, errcode.InvalidArgument
	}
	for e.stopPending.Load() {
		e.wait()
	}
	if e.active {
		panic("softi2c: Transfer re-entered while a transfer is active")
	}
	e.active = true
	e.addr = req.Addr
	e.read = req.Read
	e.buf = req.Buf
	e.count = 0
	e.stopPending.Store(req.SendStop)
	e.ph = phaseStart
	e.start = startSDARelease
	e.completed.Store(false)
	e.tick.Enable()
	// The power-up stop cycle may have left a wakeup in the channel with
	// nobody waiting; the completed flag filters it out.
	for !e.completed.Load() {
		e.wait()
	}
	n := e.count
	e.active = false
	if n < 0 {
		return 0, errcode.IOError
	}
	return n, nil
}

// Tx implements the tinygo.org/x/drivers I2C interface on top of Transfer.
// When both w and r are given, the write is issued without a stop and the
// read follows on a repeated start, so the bus is never released in
// between.
func (e *Engine) Tx(addr uint16, w, r []byte) error {
	if len(w) != 0 {
		req := Request{Addr: uint8(addr), Buf: w, SendStop: len(r) == 0}
		if _, err := e.Transfer(req); err != nil {
			return err
		}
	}
	if len(r) != 0 {
		req := Request{Addr: uint8(addr), Read: true, Buf: r, SendStop: true}
		if _, err := e.Transfer(req); err != nil {
			return err
		}
	}
	return nil
}

var _ drivers.I2C = (*Engine)(nil)
