package softi2c

// phase is the top-level protocol state. Each phase runs its own micro
// state machine; the step types below are distinct per machine so a step
// value can never be read against the wrong phase.
type phase uint8

const (
	phaseStart phase = iota
	phaseAddress
	phaseDataTx
	phaseDataRx
	phaseStop
)

// startStep sequences the start condition: with the bus idle, SDA falls
// while SCL is high.
type startStep uint8

const (
	startSDARelease startStep = iota // ensure SDA is at its idle high
	startSCLRelease                  // clock high
	startSDALow                      // SDA falls while SCL is high: start
)

// advance moves to the next step, clamped at the final one.
func (s startStep) advance() startStep {
	if s < startSDALow {
		return s + 1
	}
	return s
}

// stopStep sequences the stop condition: SDA rises while SCL is high.
type stopStep uint8

const (
	stopSDALow stopStep = iota
	stopSCLRelease
	stopSDARelease // SDA rises while SCL is high: stop
)

func (s stopStep) advance() stopStep {
	if s < stopSDARelease {
		return s + 1
	}
	return s
}

// txStep sequences one transmitted byte: eight data bits, most significant
// first, then the acknowledge slot. Even steps up to txBitLast drive SCL
// low and present the next bit; odd steps release SCL so the slave samples
// it on the rising edge.
type txStep uint8

const (
	txBitFirst     txStep = 0
	txBitLast      txStep = 15
	txAckRelease   txStep = 16 // SCL low, SDA released for the slave
	txAckClockHigh txStep = 17
	txAckSample    txStep = 18 // stretch-checked ACK/NACK sample
)

// bitMask selects the data bit presented by step s. Data steps alternate
// clock-low/clock-high, so halving the step index yields the bit position.
func (s txStep) bitMask() uint8 {
	return 0x80 >> (uint8(s) >> 1)
}

func (s txStep) advance() txStep {
	if s < txAckSample {
		return s + 1
	}
	return s
}

// rxStep mirrors txStep for a received byte: even steps release SCL, odd
// steps sample the bit and pull SCL low again.
type rxStep uint8

const (
	rxBitFirst      rxStep = 0
	rxBitSampleLast rxStep = 15
	rxAckClockHigh  rxStep = 16
	rxAckFinish     rxStep = 17
)

func (s rxStep) advance() rxStep {
	if s < rxAckFinish {
		return s + 1
	}
	return s
}
