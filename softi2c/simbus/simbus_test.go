package simbus

import (
	"testing"

	"softi2c-go/softi2c"
)

func TestWireResolvesLowWins(t *testing.T) {
	w := NewWire()
	a, b := w.Port(), w.Port()
	if w.Level() != softi2c.High {
		t.Fatal("unloaded wire should read high")
	}
	a.DriveLow(true)
	if w.Level() != softi2c.Low {
		t.Fatal("driven wire should read low")
	}
	b.DriveLow(true)
	a.DriveLow(false)
	if w.Level() != softi2c.Low {
		t.Fatal("wire should stay low while any port drives it")
	}
	b.DriveLow(false)
	if w.Level() != softi2c.High {
		t.Fatal("released wire should float high")
	}
}

func TestPinOpenDrainModel(t *testing.T) {
	w := NewWire()
	p := NewPin(w)

	// Input direction releases the wire regardless of the latch.
	p.Clear()
	if w.Level() != softi2c.High {
		t.Fatal("input pin must not drive the wire")
	}
	// Output with a cleared latch pulls low.
	p.SetDirection(softi2c.Output)
	if w.Level() != softi2c.Low {
		t.Fatal("output pin with low latch should pull the wire low")
	}
	// Switching back to input releases again.
	p.SetDirection(softi2c.Input)
	if w.Level() != softi2c.High {
		t.Fatal("released pin should let the wire float high")
	}
	if p.Actions != 3 {
		t.Fatalf("Actions = %d, want 3", p.Actions)
	}
	if p.Read() != softi2c.High {
		t.Fatal("Read should report the wire level")
	}
	if p.Actions != 3 {
		t.Fatal("Read must not count as an electrical action")
	}
}

func TestRecorderFlagsEdgesUnderHighClock(t *testing.T) {
	sdaW, sclW := NewWire(), NewWire()
	sda, scl := sdaW.Port(), sclW.Port()
	r := NewRecorder(sdaW, sclW)

	r.Sample() // both high: primes
	sda.DriveLow(true)
	r.Sample() // SDA falls under high SCL: start
	scl.DriveLow(true)
	sda.DriveLow(false)
	r.Sample() // SDA rises while SCL fell: not a condition
	scl.DriveLow(false)
	r.Sample()
	sda.DriveLow(true)
	r.Sample() // second start
	sda.DriveLow(false)
	r.Sample() // stop

	if r.StartEdges != 2 {
		t.Fatalf("StartEdges = %d, want 2", r.StartEdges)
	}
	if r.StopEdges != 1 {
		t.Fatalf("StopEdges = %d, want 1", r.StopEdges)
	}
	if r.Ticks != 6 {
		t.Fatalf("Ticks = %d, want 6", r.Ticks)
	}
}
