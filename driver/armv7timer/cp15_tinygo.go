//go:build tinygo && arm

package armv7timer

import "device/arm"

// CP15 accesses the physical timer of the executing core through coprocessor 15
type CP15 struct{}

func (CP15) ReadControl() uint32 {
	return uint32(arm.AsmFull("mrc p15, 0, {}, c14, c2, 1", nil))
}

func (CP15) WriteControl(v uint32) {
	arm.AsmFull("mcr p15, 0, {val}, c14, c2, 1\nisb sy", map[string]interface{}{
		"val": v,
	})
}

func (CP15) ReadFrequency() uint32 {
	return uint32(arm.AsmFull("mrc p15, 0, {}, c14, c0, 0", nil))
}

// ReadCounter reads CNTPCT. mrrc returns both halves but only one output
// can be bound, so the halves are read separately and the high word is
// re-read to detect a carry between them.
//
// The unwanted half lands in r12, which AsmFull cannot declare as
// clobbered. This relies on r12 (ip) holding nothing live across the
// statement, which holds for the call-free loop below but is not
// guaranteed by the compiler. Keep this function free of other work.
func (CP15) ReadCounter() uint64 {
	for {
		high1 := uint32(arm.AsmFull("mrrc p15, 0, r12, {}, c14", nil))
		low := uint32(arm.AsmFull("mrrc p15, 0, {}, r12, c14", nil))
		high2 := uint32(arm.AsmFull("mrrc p15, 0, r12, {}, c14", nil))
		if high1 == high2 {
			return uint64(high1)<<32 | uint64(low)
		}
	}
}

func (CP15) WriteCompare(v uint64) {
	arm.AsmFull("mcrr p15, 2, {lo}, {hi}, c14\nisb sy", map[string]interface{}{
		"lo": uint32(v),
		"hi": uint32(v >> 32),
	})
}
