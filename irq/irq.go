// Package irq is the interrupt controller abstraction drivers request lines from.
package irq

import "errors"

// Handler runs in interrupt context on the owning core.
// It must not block, allocate or take locks.
type Handler func(data any)

// Type selects the trigger mode of a line
type Type uint8

const (
	TypeNone Type = iota
	TypeEdgeRising
	TypeEdgeFalling
	TypeEdgeBoth
	TypeLevelHigh
	TypeLevelLow
)

var (
	ErrInvalid    = errors.New("invalid interrupt line")
	ErrBusy       = errors.New("interrupt line already requested")
	ErrNilHandler = errors.New("interrupt handler is nil")
)

// Controller is implemented by interrupt controllers
type Controller interface {
	// IsValid reports whether the line exists on this controller
	IsValid(line int) bool

	// Request binds a handler to a line and enables it
	Request(line int, h Handler, typ Type, data any) error

	// Free disables a line and releases its handler
	Free(line int)
}

// Global controller used by drivers that are not handed one explicitly.
var controller Controller

// SetController is called by target-specific code to register its controller.
func SetController(c Controller) {
	controller = c
}

// MustController returns the configured controller or panics if missing.
func MustController() Controller {
	if controller == nil {
		panic("interrupt controller not configured")
	}
	return controller
}
