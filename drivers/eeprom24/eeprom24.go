// Package eeprom24 drives 24Cxx style I2C EEPROMs: byte-addressed reads
// and page-buffered writes with acknowledge polling.
//
// NOTE: the bus's Tx must perform a write followed by a repeated-start
// read when both w and r are provided, without releasing the bus; random
// reads depend on it.
//
// Parts up to 2048 bytes use a single memory-address byte plus block
// select bits folded into the device address; larger parts use two
// address bytes.
package eeprom24

import (
	"errors"
	"io"
	"time"

	"tinygo.org/x/drivers"

	"softi2c-go/errcode"
)

// AddressDefault is the base address with all select pins strapped low.
const AddressDefault = 0x50

// maxPageSize bounds the fixed scratch buffer; 64 covers parts up to the
// 24C256 family.
const maxPageSize = 64

// Errors returned by the driver.
var (
	ErrConfig     = errors.New("eeprom24: invalid config")
	ErrOutOfRange = errors.New("eeprom24: offset out of range")
)

// Config describes one part. All durations and sizes come from the
// datasheet of the part in use.
type Config struct {
	// Address is the 7-bit base address; defaults to AddressDefault.
	Address uint16
	// Size is the capacity in bytes.
	Size uint32
	// PageSize is the write page size; must be a power of two.
	PageSize uint16
	// WriteCycleTime bounds acknowledge polling after a page write.
	// Defaults to 5ms.
	WriteCycleTime time.Duration
}

// Common parts.
var (
	Config24C02  = Config{Size: 256, PageSize: 8}
	Config24C32  = Config{Size: 4096, PageSize: 32}
	Config24C256 = Config{Size: 32768, PageSize: 64}
)

// Device is one EEPROM on an I2C bus.
type Device struct {
	bus   drivers.I2C
	addr  uint16
	size  uint32
	page  uint32
	cycle time.Duration
	wide  bool // two memory-address bytes

	// Fixed scratch: memory address plus one page, to avoid per-call
	// allocations.
	buf [2 + maxPageSize]byte
}

// New creates a device on an already configured bus.
func New(bus drivers.I2C, cfg Config) (*Device, error) {
	if cfg.Address == 0 {
		cfg.Address = AddressDefault
	}
	if cfg.WriteCycleTime == 0 {
		cfg.WriteCycleTime = 5 * time.Millisecond
	}
	if cfg.Size == 0 || cfg.PageSize == 0 || cfg.PageSize > maxPageSize ||
		cfg.PageSize&(cfg.PageSize-1) != 0 {
		return nil, ErrConfig
	}
	return &Device{
		bus:   bus,
		addr:  cfg.Address,
		size:  cfg.Size,
		page:  uint32(cfg.PageSize),
		cycle: cfg.WriteCycleTime,
		wide:  cfg.Size > 2048,
	}, nil
}

// Size returns the capacity in bytes.
func (d *Device) Size() int64 { return int64(d.size) }

// busAddr returns the device address selecting the 256-byte block that
// off falls in. Wide parts address the whole array directly.
func (d *Device) busAddr(off uint32) uint16 {
	if d.wide {
		return d.addr
	}
	return d.addr + uint16(off>>8)
}

// memAddr encodes the memory address into the scratch buffer and returns
// its length.
func (d *Device) memAddr(off uint32) int {
	if d.wide {
		d.buf[0] = byte(off >> 8)
		d.buf[1] = byte(off)
		return 2
	}
	d.buf[0] = byte(off)
	return 1
}

// ReadAt implements io.ReaderAt. Reads cross page boundaries freely; a
// read reaching the end of the array is truncated and returns io.EOF.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(d.size) {
		return 0, ErrOutOfRange
	}
	short := false
	if rem := int64(d.size) - off; int64(len(p)) > rem {
		p = p[:rem]
		short = true
	}
	n := 0
	for len(p) > 0 {
		o := uint32(off) + uint32(n)
		chunk := p
		if !d.wide {
			// Block-select addressing: the device address changes every
			// 256 bytes, so split reads there.
			if room := 256 - int(o&0xFF); len(chunk) > room {
				chunk = chunk[:room]
			}
		}
		na := d.memAddr(o)
		if err := d.bus.Tx(d.busAddr(o), d.buf[:na], chunk); err != nil {
			return n, err
		}
		n += len(chunk)
		p = p[len(chunk):]
	}
	if short {
		return n, io.EOF
	}
	return n, nil
}

// ReadCurrent reads from the part's internal address counter, which sits
// one past the last byte touched. Useful for sequential dumps without
// re-sending the address.
func (d *Device) ReadCurrent(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := d.bus.Tx(d.addr, nil, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteAt implements io.WriterAt. Writes are split on page boundaries and
// each page is followed by acknowledge polling until the part leaves its
// internal write cycle.
func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(d.size) {
		return 0, ErrOutOfRange
	}
	n := 0
	for len(p) > 0 {
		o := uint32(off) + uint32(n)
		nip := int(d.page - (o & (d.page - 1)))
		if nip > len(p) {
			nip = len(p)
		}
		na := d.memAddr(o)
		copy(d.buf[na:], p[:nip])
		if err := d.bus.Tx(d.busAddr(o), d.buf[:na+nip], nil); err != nil {
			return n, err
		}
		if err := d.waitWriteCycle(o); err != nil {
			return n, err
		}
		n += nip
		p = p[nip:]
	}
	return n, nil
}

// waitWriteCycle polls the part with one-byte reads until it answers
// again; a part still in its write cycle does not acknowledge its
// address.
func (d *Device) waitWriteCycle(off uint32) error {
	var probe [1]byte
	deadline := time.Now().Add(d.cycle)
	for {
		if err := d.bus.Tx(d.busAddr(off), nil, probe[:]); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return &errcode.E{
				C:   errcode.Timeout,
				Op:  "eeprom24.WriteAt",
				Msg: "device did not leave its write cycle",
			}
		}
		time.Sleep(d.cycle / 8)
	}
}
