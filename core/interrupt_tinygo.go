//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts on the local core and returns the previous state.
// Registry updates run under it so an interrupt handler never sees a half-updated map.
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
