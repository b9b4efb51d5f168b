package timex

import (
	"testing"
	"time"
)

func TestPeriodFromHz(t *testing.T) {
	if got := PeriodFromHz(1000); got != 1_000_000 {
		t.Fatalf("PeriodFromHz(1000) = %d, want 1000000", got)
	}
	if got := PeriodFromHz(0); got != 1_000_000_000 {
		t.Fatalf("PeriodFromHz(0) = %d, want 1000000000", got)
	}
}

func TestTickPeriod(t *testing.T) {
	cases := []struct {
		busHz uint32
		want  time.Duration
	}{
		{100_000, 5 * time.Microsecond},
		{400_000, 1250 * time.Nanosecond},
		{0, 500 * time.Millisecond}, // coerced to 1 Hz
	}
	for _, c := range cases {
		if got := TickPeriod(c.busHz); got != c.want {
			t.Errorf("TickPeriod(%d) = %v, want %v", c.busHz, got, c.want)
		}
	}
}
