package simbus

import "softi2c-go/softi2c"

// Slave models a 7-bit I2C slave attached to the simulated wires. It is
// edge driven: Step must run once after every master tick, observing the
// wire levels and reacting while the clock is low, the way a real slave
// slots its work between the master's half-bit actions.
//
// Memory behaviour: with Pointer set the slave acts like a small 24Cxx
// EEPROM, the first byte of every write selecting the memory address and
// later bytes landing there; reads stream from the current address. With
// Pointer clear, written bytes only accumulate in Writes and reads stream
// Mem from the start.
type Slave struct {
	// Addr is the 7-bit address the slave answers to.
	Addr uint8
	// Pointer selects register-pointer (EEPROM style) addressing.
	Pointer bool
	// StretchTicks, when positive, holds SCL low for that many ticks at
	// every acknowledge-slot rising edge, simulating a slave that needs
	// processing time.
	StretchTicks int

	Mem [256]byte

	// Observability for tests.
	Starts     int
	Stops      int
	Writes     []byte // every data byte received, pointer bytes included
	MasterAcks []bool // ACK observed after each byte sent to the master

	sda        *Port
	scl        *Port
	sdaW, sclW *Wire

	prevSCL softi2c.Level
	prevSDA softi2c.Level

	st        slaveState
	shift     uint8
	nbits     uint8
	read      bool
	ackDriven bool
	lastAck   bool
	expectPtr bool
	ptr       uint8
	cur       uint8
	sent      uint8

	stretchLeft int
}

type slaveState uint8

const (
	slaveIdle    slaveState = iota
	slaveAddr               // shifting in the address byte
	slaveAckAddr            // driving ACK for the address byte
	slaveRecv               // shifting in a data byte
	slaveAckData            // driving ACK for a received byte
	slaveSend               // shifting a byte out to the master
	slaveAckPoll            // master drives ACK/NACK for a sent byte
)

func NewSlave(sdaW, sclW *Wire, addr uint8) *Slave {
	return &Slave{
		Addr:    addr,
		sda:     sdaW.Port(),
		scl:     sclW.Port(),
		sdaW:    sdaW,
		sclW:    sclW,
		prevSCL: sclW.Level(),
		prevSDA: sdaW.Level(),
	}
}

// Step advances the slave by one tick. Call it right after the master's
// tick so it sees the settled wire levels.
func (s *Slave) Step() {
	if s.stretchLeft > 0 {
		s.stretchLeft--
		if s.stretchLeft == 0 {
			s.scl.DriveLow(false)
		}
		return
	}

	sclv := s.sclW.Level()
	sdav := s.sdaW.Level()
	defer func() {
		s.prevSCL = sclv
		s.prevSDA = sdav
	}()

	if s.prevSCL == softi2c.High && sclv == softi2c.High {
		switch {
		case s.prevSDA == softi2c.High && sdav == softi2c.Low:
			// Start (or repeated start): reset and expect an address.
			s.Starts++
			s.st = slaveAddr
			s.nbits, s.shift = 0, 0
			s.ackDriven = false
			s.sda.DriveLow(false)
			return
		case s.prevSDA == softi2c.Low && sdav == softi2c.High:
			s.Stops++
			s.st = slaveIdle
			s.sda.DriveLow(false)
			return
		}
	}

	switch {
	case s.prevSCL == softi2c.Low && sclv == softi2c.High:
		s.onRise(sdav)
	case s.prevSCL == softi2c.High && sclv == softi2c.Low:
		s.onFall()
	}
}

func (s *Slave) onRise(sdav softi2c.Level) {
	bit := uint8(0)
	if sdav == softi2c.High {
		bit = 1
	}
	switch s.st {
	case slaveAddr, slaveRecv:
		s.shift = s.shift<<1 | bit
		s.nbits++
		if s.nbits < 8 {
			return
		}
		if s.st == slaveAddr {
			if s.shift>>1 == s.Addr {
				s.read = s.shift&1 == 1
				s.st = slaveAckAddr
			} else {
				// Not ours: stay off the bus, the master sees a NACK.
				s.st = slaveIdle
			}
			return
		}
		if s.Pointer && s.expectPtr {
			s.ptr = s.shift
			s.expectPtr = false
		} else if s.Pointer {
			s.Mem[s.ptr] = s.shift
			s.ptr++
		}
		s.Writes = append(s.Writes, s.shift)
		s.st = slaveAckData
	case slaveAckPoll:
		s.lastAck = sdav == softi2c.Low
		s.MasterAcks = append(s.MasterAcks, s.lastAck)
		s.maybeStretch()
	case slaveAckAddr, slaveAckData:
		s.maybeStretch()
	}
}

func (s *Slave) onFall() {
	switch s.st {
	case slaveAckAddr, slaveAckData:
		if !s.ackDriven {
			// First fall of the slot: drive the ACK.
			s.sda.DriveLow(true)
			s.ackDriven = true
			return
		}
		// Second fall: slot over, hand SDA back.
		s.sda.DriveLow(false)
		s.ackDriven = false
		if s.st == slaveAckAddr && s.read {
			s.st = slaveSend
			s.loadByte()
			s.presentBit()
			return
		}
		if s.st == slaveAckAddr {
			s.expectPtr = s.Pointer
		}
		s.st = slaveRecv
		s.nbits, s.shift = 0, 0
	case slaveSend:
		if s.sent < 8 {
			s.presentBit()
			return
		}
		// All bits sampled; the master owns the acknowledge slot now.
		s.sda.DriveLow(false)
		s.st = slaveAckPoll
	case slaveAckPoll:
		if s.lastAck {
			s.st = slaveSend
			s.loadByte()
			s.presentBit()
		} else {
			s.st = slaveIdle
		}
	}
}

func (s *Slave) loadByte() {
	s.cur = s.Mem[s.ptr]
	s.ptr++
	s.sent = 0
}

func (s *Slave) presentBit() {
	bit := s.cur >> (7 - s.sent) & 1
	s.sda.DriveLow(bit == 0)
	s.sent++
}

// maybeStretch engages clock stretching at an acknowledge-slot rising
// edge, after the edge itself has been processed.
func (s *Slave) maybeStretch() {
	if s.StretchTicks > 0 {
		s.scl.DriveLow(true)
		s.stretchLeft = s.StretchTicks
	}
}
