package clockevent

import (
	"math/big"
	"testing"
)

var testFrequencies = []uint64{
	1,
	32768,
	1000000,
	19200000,
	24000000,
	62500000,
	100000000,
	1000000000,
}

func newTestEvent(freq uint64) *ClockEvent {
	ce := &ClockEvent{}
	CalcMultShift(ce, freq, 10)
	CalcBounds(ce, 0x1, 0xffffffff)
	return ce
}

func TestMultShiftKnownValues(t *testing.T) {
	tests := []struct {
		freq  uint64
		mult  uint32
		shift uint32
	}{
		{1000000, 4194304000, 22},
		{24000000, 2796202667, 26},
	}
	for _, tc := range tests {
		ce := newTestEvent(tc.freq)
		if ce.Mult != tc.mult || ce.Shift != tc.shift {
			t.Errorf("freq %d: expected mult=%d shift=%d, got mult=%d shift=%d",
				tc.freq, tc.mult, tc.shift, ce.Mult, ce.Shift)
		}
	}
}

func TestMultShiftOutOfRange(t *testing.T) {
	for _, freq := range []uint64{1000000000000000000, 4000000000000000000, ^uint64(0)} {
		mult, shift := MultShift(freq, NSecPerSec, 10)
		if mult != 0 {
			t.Errorf("freq %d: expected mult 0, got mult=%d shift=%d", freq, mult, shift)
		}
	}
}

func TestDeltaToNSZeroAndMonotonic(t *testing.T) {
	for _, freq := range testFrequencies {
		ce := newTestEvent(freq)
		if got := DeltaToNS(ce, 0); got != 0 {
			t.Errorf("freq %d: expected DeltaToNS(0)=0, got %d", freq, got)
		}

		prev := uint64(0)
		for _, d := range []uint64{1, 2, 3, 10, 1000, 65535, 1 << 20, 1 << 31, 0xfffffffe, 0xffffffff} {
			got := DeltaToNS(ce, d)
			if got < prev {
				t.Errorf("freq %d: DeltaToNS(%d)=%d below previous %d", freq, d, got, prev)
			}
			prev = got
		}
	}
}

func TestBoundsMatchConversion(t *testing.T) {
	for _, freq := range testFrequencies {
		ce := newTestEvent(freq)
		if ce.MinDeltaNS != DeltaToNS(ce, 1) {
			t.Errorf("freq %d: MinDeltaNS %d != DeltaToNS(1) %d", freq, ce.MinDeltaNS, DeltaToNS(ce, 1))
		}
		if ce.MaxDeltaNS != DeltaToNS(ce, 0xffffffff) {
			t.Errorf("freq %d: MaxDeltaNS %d != DeltaToNS(max) %d", freq, ce.MaxDeltaNS, DeltaToNS(ce, 0xffffffff))
		}
	}
}

// The product of the largest delta and mult must fit 64 bits, so the
// plain 64-bit formula agrees with the 128-bit one.
func TestNoOverflow(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 64)
	for _, freq := range testFrequencies {
		ce := newTestEvent(freq)

		product := new(big.Int).Mul(big.NewInt(0xffffffff), new(big.Int).SetUint64(uint64(ce.Mult)))
		if product.Cmp(limit) >= 0 {
			t.Errorf("freq %d: 0xffffffff * mult overflows 64 bits", freq)
			continue
		}

		naive := (uint64(0xffffffff) * uint64(ce.Mult)) >> ce.Shift
		if got := DeltaToNS(ce, 0xffffffff); got != naive {
			t.Errorf("freq %d: expected %d, got %d", freq, naive, got)
		}
	}
}

func TestDeltaToNSAccuracy(t *testing.T) {
	for _, freq := range testFrequencies {
		ce := newTestEvent(freq)

		// One second of ticks converts to one second, within 0.01%.
		got := DeltaToNS(ce, freq)
		diff := int64(got) - NSecPerSec
		if diff < 0 {
			diff = -diff
		}
		if diff > NSecPerSec/10000 {
			t.Errorf("freq %d: one second of ticks is %dns", freq, got)
		}
	}
}

func TestOneMegahertzMinDelta(t *testing.T) {
	ce := newTestEvent(1000000)
	if ce.MinDeltaNS != 1000 {
		t.Errorf("Expected MinDeltaNS 1000, got %d", ce.MinDeltaNS)
	}
	if ce.MaxDeltaNS != 4294967295000 {
		t.Errorf("Expected MaxDeltaNS 4294967295000, got %d", ce.MaxDeltaNS)
	}
}

func TestNSToDeltaInverse(t *testing.T) {
	for _, freq := range testFrequencies {
		ce := newTestEvent(freq)
		for _, ticks := range []uint64{1, 7, 1000, 123456, 1 << 30, 0xffffffff} {
			back := NSToDelta(ce, DeltaToNS(ce, ticks))
			if back > ticks || ticks-back > 2 {
				t.Errorf("freq %d: %d ticks round-tripped to %d", freq, ticks, back)
			}
		}
	}
}

func TestNSToDeltaSaturates(t *testing.T) {
	ce := newTestEvent(1000000000)
	if got := NSToDelta(ce, ^uint64(0)); got != ^uint64(0) {
		t.Errorf("Expected saturation, got %d", got)
	}
	if got := NSToDelta(&ClockEvent{}, 1000); got != 0 {
		t.Errorf("Expected 0 for zero mult, got %d", got)
	}
}
