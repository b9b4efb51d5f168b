// Package pcf8574 drives the PCF8574 8-bit quasi-bidirectional I/O
// expander. The part has no registers: a plain write sets the output
// latch, a plain read samples the pins. A pin written high is weakly
// pulled up and doubles as an input, so the latch defaults to 0xFF.
package pcf8574

import (
	"tinygo.org/x/drivers"
)

// Address is the base address with all select pins strapped low. The
// PCF8574A variant uses 0x38.
const Address = 0x20

// Config controls the device address.
type Config struct {
	// Address defaults to Address if zero.
	Address uint16
}

// Device wraps an I2C connection to a PCF8574.
type Device struct {
	bus   drivers.I2C
	addr  uint16
	latch uint8
	buf   [1]byte
}

// New creates a device on an already configured bus.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, addr: Address, latch: 0xFF}
}

// Configure applies cfg and writes the initial all-high latch, leaving
// every pin usable as an input.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.addr = cfg.Address
	}
	return d.WritePins(0xFF)
}

// WritePins sets all eight outputs at once.
func (d *Device) WritePins(v uint8) error {
	d.buf[0] = v
	if err := d.bus.Tx(d.addr, d.buf[:], nil); err != nil {
		return err
	}
	d.latch = v
	return nil
}

// SetPin drives one output, leaving the others at their latched values.
func (d *Device) SetPin(pin uint8, high bool) error {
	v := d.latch
	if high {
		v |= 1 << (pin & 7)
	} else {
		v &^= 1 << (pin & 7)
	}
	return d.WritePins(v)
}

// ReadPins samples all eight pins. Pins latched low read low regardless
// of the external signal.
func (d *Device) ReadPins() (uint8, error) {
	if err := d.bus.Tx(d.addr, nil, d.buf[:]); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

// Pin samples one pin.
func (d *Device) Pin(pin uint8) (bool, error) {
	v, err := d.ReadPins()
	return v>>(pin&7)&1 == 1, err
}
