package pcf8574

import (
	"testing"
)

type fakeBus struct {
	writes []byte // latch values, in order
	pins   uint8  // value served to reads
	addrs  []uint16
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	f.addrs = append(f.addrs, addr)
	if len(w) > 0 {
		f.writes = append(f.writes, w[0])
	}
	for i := range r {
		r[i] = f.pins
	}
	return nil
}

func TestConfigureWritesAllHigh(t *testing.T) {
	bus := &fakeBus{}
	d := New(bus)
	if err := d.Configure(Config{}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if len(bus.writes) != 1 || bus.writes[0] != 0xFF {
		t.Fatalf("writes = %#x, want [0xff]", bus.writes)
	}
	if bus.addrs[0] != Address {
		t.Fatalf("addr = %#x, want %#x", bus.addrs[0], Address)
	}
}

func TestSetPinPreservesLatch(t *testing.T) {
	bus := &fakeBus{}
	d := New(bus)
	if err := d.Configure(Config{Address: 0x21}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := d.SetPin(3, false); err != nil {
		t.Fatalf("SetPin: %v", err)
	}
	if err := d.SetPin(0, false); err != nil {
		t.Fatalf("SetPin: %v", err)
	}
	if err := d.SetPin(3, true); err != nil {
		t.Fatalf("SetPin: %v", err)
	}
	want := []byte{0xFF, 0xF7, 0xF6, 0xFE}
	if len(bus.writes) != len(want) {
		t.Fatalf("writes = %#x, want %#x", bus.writes, want)
	}
	for i := range want {
		if bus.writes[i] != want[i] {
			t.Fatalf("writes = %#x, want %#x", bus.writes, want)
		}
	}
	for _, a := range bus.addrs {
		if a != 0x21 {
			t.Fatalf("addr = %#x, want 0x21", a)
		}
	}
}

func TestReadPins(t *testing.T) {
	bus := &fakeBus{pins: 0xA5}
	d := New(bus)
	v, err := d.ReadPins()
	if err != nil {
		t.Fatalf("ReadPins: %v", err)
	}
	if v != 0xA5 {
		t.Fatalf("v = %#x, want 0xa5", v)
	}
	high, err := d.Pin(7)
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if !high {
		t.Fatal("pin 7 = low, want high")
	}
	if low, _ := d.Pin(1); low {
		t.Fatal("pin 1 = high, want low")
	}
}
