package armv7timer

// Registers is the per-core physical timer register set (CNTP_CTL, CNTPCT,
// CNTP_CVAL and CNTFRQ). Accesses never fail.
type Registers interface {
	ReadControl() uint32
	WriteControl(v uint32)

	// ReadCounter returns the 64-bit free-running counter
	ReadCounter() uint64

	// WriteCompare sets the absolute compare value
	WriteCompare(v uint64)

	// ReadFrequency returns the counter frequency in Hz as programmed by firmware
	ReadFrequency() uint32
}

// CNTP_CTL bits
const (
	CtrlEnable  = 1 << 0 // Timer enabled
	CtrlIMask   = 1 << 1 // Compare interrupt masked
	CtrlIStatus = 1 << 2 // Compare condition met (read-only)
)

// FallbackFrequency is used when CNTFRQ reads as zero
const FallbackFrequency = 1000000

// timerStart sets ENABLE unless it is already set
func timerStart(r Registers) {
	ctrl := r.ReadControl()
	if ctrl&CtrlEnable == 0 {
		ctrl |= CtrlEnable
		r.WriteControl(ctrl)
	}
}

// timerStop clears ENABLE unless it is already clear
func timerStop(r Registers) {
	ctrl := r.ReadControl()
	if ctrl&CtrlEnable != 0 {
		ctrl &^= CtrlEnable
		r.WriteControl(ctrl)
	}
}

// timerInterruptEnable clears IMASK when it is set
func timerInterruptEnable(r Registers) {
	ctrl := r.ReadControl()
	if ctrl&CtrlIMask != 0 {
		ctrl &^= CtrlIMask
		r.WriteControl(ctrl)
	}
}

// timerInterruptDisable sets IMASK when it is clear
func timerInterruptDisable(r Registers) {
	ctrl := r.ReadControl()
	if ctrl&CtrlIMask == 0 {
		ctrl |= CtrlIMask
		r.WriteControl(ctrl)
	}
}

func timerFrequency(r Registers) uint64 {
	if v := r.ReadFrequency(); v != 0 {
		return uint64(v)
	}
	return FallbackFrequency
}

// timerCompare programs the compare value interval ticks past the current count
func timerCompare(r Registers, interval uint64) {
	r.WriteCompare(r.ReadCounter() + interval)
}
