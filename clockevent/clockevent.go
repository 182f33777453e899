// Package clockevent defines the clock-event device contract between
// one-shot hardware timers and the scheduling layer above them.
//
// A driver fills in a ClockEvent (conversion constants, delta bounds and a
// Next function that arms the hardware) and registers it. The consumer
// installs a Handler with SetEventHandler and programs events in
// nanoseconds with SetEventNext.
package clockevent

import "math/bits"

// NSecPerSec is the number of nanoseconds in one second
const NSecPerSec = 1000000000

// HandlerFunc is called from interrupt context on every expiry
type HandlerFunc func(ce *ClockEvent, data any)

// NextFunc arms the hardware to fire ticks counter ticks from now
type NextFunc func(ce *ClockEvent, ticks uint64) bool

// ClockEvent is a one-shot event device
type ClockEvent struct {
	Name      string
	Frequency uint64 // Counter ticks per second

	// DeltaToNS(delta) == (delta * Mult) >> Shift
	Mult  uint32
	Shift uint32

	MinDeltaNS uint64
	MaxDeltaNS uint64

	Handler HandlerFunc
	Data    any

	Next NextFunc
	Priv any
}

// CalcMultShift computes the Mult/Shift pair converting ticks at freq Hz to
// nanoseconds. maxsec bounds the conversion range: any delta up to
// maxsec seconds of ticks converts without overflowing 64 bits.
func CalcMultShift(ce *ClockEvent, freq uint64, maxsec uint32) {
	ce.Mult, ce.Shift = MultShift(freq, NSecPerSec, maxsec)
	ce.Frequency = freq
}

// MultShift returns mult and shift such that (x * mult) >> shift
// approximates x * to / from, with shift as large as the range allows.
func MultShift(from, to uint64, maxsec uint32) (mult, shift uint32) {
	// Shrink the accumulator by the bits maxsec*from needs above 32.
	// The product is taken in 96 bits; a rate too fast for the range
	// leaves no accumulator and yields mult 0.
	hi, lo := bits.Mul64(uint64(maxsec), from)
	sftacc := uint32(32)
	tmp := hi<<32 | lo>>32
	for tmp != 0 && sftacc > 0 {
		tmp >>= 1
		sftacc--
	}

	var sft uint32
	for sft = 32; sft > 0; sft-- {
		tmp = to << sft
		tmp += from / 2
		tmp /= from
		if tmp>>sftacc == 0 {
			break
		}
	}
	return uint32(tmp), sft
}

// DeltaToNS converts a tick count to nanoseconds.
// The product is formed in 128 bits so it cannot wrap.
func DeltaToNS(ce *ClockEvent, delta uint64) uint64 {
	hi, lo := bits.Mul64(delta, uint64(ce.Mult))
	if ce.Shift == 0 {
		return lo
	}
	return hi<<(64-ce.Shift) | lo>>ce.Shift
}

// NSToDelta converts nanoseconds to ticks, the inverse of DeltaToNS.
// Results that do not fit 64 bits saturate.
func NSToDelta(ce *ClockEvent, ns uint64) uint64 {
	if ce.Mult == 0 {
		return 0
	}
	var hi, lo uint64
	if ce.Shift == 0 {
		lo = ns
	} else {
		hi, lo = ns>>(64-ce.Shift), ns<<ce.Shift
	}
	if hi >= uint64(ce.Mult) {
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi, lo, uint64(ce.Mult))
	return q
}

// CalcBounds sets MinDeltaNS and MaxDeltaNS from the smallest and largest
// tick counts the hardware can program.
func CalcBounds(ce *ClockEvent, minTicks, maxTicks uint64) {
	ce.MinDeltaNS = DeltaToNS(ce, minTicks)
	ce.MaxDeltaNS = DeltaToNS(ce, maxTicks)
}
