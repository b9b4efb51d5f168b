package softi2c

// countIOErr flags an unexpected NACK in the byte counter. The magnitude
// carries no meaning.
const countIOErr = -1

// Tick runs one step of the active micro state machine. Call it from the
// periodic timer interrupt, once per half bit period, while the tick
// source is enabled. It performs at most one electrical action per call
// and never blocks.
func (e *Engine) Tick() {
	exit := false
	switch e.ph {
	case phaseStart:
		if e.tickStart() {
			// Start done, send the address.
			e.ph = phaseAddress
			e.tx = txBitFirst
		}
	case phaseAddress:
		address := e.addr << 1
		if e.read {
			address |= 1
		}
		if e.tickTx(address) {
			switch {
			case e.count < 0:
				// Unexpected NACK. Send a stop to shut down cleanly.
				e.ph = phaseStop
				e.stop = stopSDALow
			case e.read:
				e.ph = phaseDataRx
				e.rx = rxBitFirst
			default:
				e.ph = phaseDataTx
				e.tx = txBitFirst
			}
		}
	case phaseDataTx:
		if e.tickTx(e.buf[e.count]) {
			if e.count < 0 {
				e.ph = phaseStop
				e.stop = stopSDALow
				break
			}
			e.count++
			switch {
			case e.count < len(e.buf):
				e.tx = txBitFirst // next byte
			case e.stopPending.Load():
				e.ph = phaseStop
				e.stop = stopSDALow
			default:
				// Caller holds the bus for a repeated start.
				exit = true
			}
		}
	case phaseDataRx:
		last := e.count+1 >= len(e.buf)
		if e.tickRx(&e.buf[e.count], last) {
			if e.count < 0 {
				exit = true
				break
			}
			e.count++
			switch {
			case e.count < len(e.buf):
				e.rx = rxBitFirst
			case e.stopPending.Load():
				e.ph = phaseStop
				e.stop = stopSDALow
			default:
				exit = true
			}
		}
	case phaseStop:
		exit = e.tickStop()
	}

	if exit {
		e.tick.Disable()
		e.completed.Store(true)
		e.post()
	}
}

// tickStart runs one step of the start sequence. Reports true once the
// sequence has finished.
func (e *Engine) tickStart() bool {
	switch e.start {
	case startSDARelease:
		release(e.sda)
		e.start = e.start.advance()
	case startSCLRelease:
		release(e.scl)
		e.start = e.start.advance()
	case startSDALow:
		drivelow(e.sda)
		e.start = e.start.advance()
		return true
	}
	return false
}

// tickStop runs one step of the stop sequence. The final step clears
// stopPending: the bus is idle again.
func (e *Engine) tickStop() bool {
	switch e.stop {
	case stopSDALow:
		drivelow(e.sda)
		e.stop = e.stop.advance()
	case stopSCLRelease:
		release(e.scl)
		e.stop = e.stop.advance()
	case stopSDARelease:
		release(e.sda)
		e.stopPending.Store(false)
		return true
	}
	return false
}

// tickTx runs one step of a byte transmission. Reports true when the byte
// and its acknowledge slot are done; e.count goes negative on a NACK.
//
// SDA must be stable while SCL is high, so every bit takes two ticks:
// pull SCL low and present the bit, then release SCL for the slave to
// sample on the rising edge.
func (e *Engine) tickTx(data uint8) bool {
	switch {
	case e.tx <= txBitLast && e.tx&1 == 0:
		drivelow(e.scl)
		if data&e.tx.bitMask() != 0 {
			release(e.sda)
		} else {
			drivelow(e.sda)
		}
		e.tx = e.tx.advance()
	case e.tx <= txBitLast:
		// The slave samples on this rising edge.
		release(e.scl)
		e.tx = e.tx.advance()
	case e.tx == txAckRelease:
		drivelow(e.scl)
		release(e.sda) // slave drives ACK or NACK
		e.tx = e.tx.advance()
	case e.tx == txAckClockHigh:
		release(e.scl)
		e.tx = e.tx.advance()
	default: // txAckSample
		if e.scl.Read() == Low {
			// Slave is clock stretching; rerun this step.
			e.stretch = true
			return false
		}
		if e.stretch {
			// I2C requires a minimum hold after SCL rises out of a stretch
			// before the master may pull it low again. Rerun the step once
			// more to guarantee it.
			e.stretch = false
			return false
		}
		ack := e.sda.Read() == Low
		drivelow(e.scl)
		if !ack {
			e.count = countIOErr
		}
		return true
	}
	return false
}

// tickRx runs one step of a byte reception into *data. last selects the
// final byte of the request, which is NACKed to tell the slave to stop
// sending; every other byte is ACKed.
func (e *Engine) tickRx(data *uint8, last bool) bool {
	switch {
	case e.rx == rxBitFirst:
		release(e.sda) // the slave owns SDA for the data bits
		release(e.scl)
		e.rx = e.rx.advance()
	case e.rx <= rxBitSampleLast && e.rx&1 == 0:
		release(e.scl)
		e.rx = e.rx.advance()
	case e.rx <= rxBitSampleLast:
		if e.scl.Read() == Low {
			e.stretch = true
			return false
		}
		if e.stretch {
			// Same minimum hold after a stretch as in tickTx, here before
			// the master samples SDA.
			e.stretch = false
			return false
		}
		*data <<= 1
		if e.sda.Read() == High {
			*data |= 1
		}
		drivelow(e.scl)
		if e.rx == rxBitSampleLast && !last {
			// ACK the byte. On the final byte SDA stays released: the
			// NACK tells the slave to stop sending.
			drivelow(e.sda)
		}
		e.rx = e.rx.advance()
	case e.rx == rxAckClockHigh:
		release(e.scl)
		e.rx = e.rx.advance()
	default: // rxAckFinish
		if e.scl.Read() == Low {
			e.stretch = true
			return false
		}
		if e.stretch {
			e.stretch = false
			return false
		}
		drivelow(e.scl)
		release(e.sda)
		return true
	}
	return false
}
