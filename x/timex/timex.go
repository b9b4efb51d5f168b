package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

// TickPeriod returns the tick interval that clocks a bus at busHz: two
// ticks per bit, so half the bit period. busHz==0 is coerced to 1.
func TickPeriod(busHz uint32) time.Duration {
	if busHz == 0 {
		busHz = 1
	}
	return time.Second / time.Duration(2*uint64(busHz))
}
