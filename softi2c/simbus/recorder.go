package simbus

import "softi2c-go/softi2c"

// Recorder samples both wires once per tick and keeps the protocol-level
// facts tests assert on: the tick count and every SDA edge that happened
// while SCL stayed high. On a compliant bus those edges are exactly the
// start and stop conditions.
type Recorder struct {
	// Ticks counts samples, one per delivered tick.
	Ticks int
	// StartEdges counts SDA falling edges seen while SCL stayed high.
	StartEdges int
	// StopEdges counts SDA rising edges seen while SCL stayed high.
	StopEdges int

	sdaW, sclW *Wire
	prevSDA    softi2c.Level
	prevSCL    softi2c.Level
	primed     bool
}

func NewRecorder(sdaW, sclW *Wire) *Recorder {
	return &Recorder{sdaW: sdaW, sclW: sclW}
}

// Sample records the current wire levels. Run it after the master and
// slave steps of each tick so it sees the settled bus.
func (r *Recorder) Sample() {
	sda := r.sdaW.Level()
	scl := r.sclW.Level()
	if r.primed && r.prevSCL == softi2c.High && scl == softi2c.High {
		switch {
		case r.prevSDA == softi2c.High && sda == softi2c.Low:
			r.StartEdges++
		case r.prevSDA == softi2c.Low && sda == softi2c.High:
			r.StopEdges++
		}
	}
	r.primed = true
	r.prevSDA, r.prevSCL = sda, scl
	r.Ticks++
}
