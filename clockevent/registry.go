package clockevent

import (
	"errors"
	"time"

	"cetimer/core"
)

var (
	ErrNil      = errors.New("clockevent is nil")
	ErrNoName   = errors.New("clockevent has no name")
	ErrNoNext   = errors.New("clockevent has no next function")
	ErrNotFound = errors.New("clockevent not registered")
)

func noopHandler(ce *ClockEvent, data any) {}

// Register publishes a clock event in the device registry under drv.
// The caller owns ce.Name and frees it if Register fails.
func Register(reg *core.Registry, ce *ClockEvent, drv core.Driver) (*core.Device, error) {
	if ce == nil {
		return nil, ErrNil
	}
	if ce.Name == "" {
		return nil, ErrNoName
	}
	if ce.Next == nil {
		return nil, ErrNoNext
	}
	if ce.Handler == nil {
		ce.Handler = noopHandler
	}

	dev := &core.Device{
		Name:   ce.Name,
		Type:   core.DeviceTypeClockEvent,
		Driver: drv,
		Priv:   ce,
	}
	if err := reg.RegisterDevice(dev); err != nil {
		return nil, err
	}
	return dev, nil
}

// Unregister removes a clock event from the device registry
func Unregister(reg *core.Registry, ce *ClockEvent) error {
	if ce == nil {
		return ErrNil
	}
	dev, ok := reg.SearchDevice(ce.Name, core.DeviceTypeClockEvent)
	if !ok || dev.Priv != ce {
		return ErrNotFound
	}
	return reg.UnregisterDevice(dev)
}

// Search finds a registered clock event by device name
func Search(reg *core.Registry, name string) (*ClockEvent, bool) {
	dev, ok := reg.SearchDevice(name, core.DeviceTypeClockEvent)
	if !ok {
		return nil, false
	}
	ce, ok := dev.Priv.(*ClockEvent)
	return ce, ok
}

// SearchFirst returns the earliest registered clock event
func SearchFirst(reg *core.Registry) (*ClockEvent, bool) {
	for _, dev := range reg.ListDevices(core.DeviceTypeClockEvent) {
		if ce, ok := dev.Priv.(*ClockEvent); ok {
			return ce, true
		}
	}
	return nil, false
}

// SetEventHandler installs the expiry callback. A nil handler restores the no-op.
func SetEventHandler(ce *ClockEvent, handler HandlerFunc, data any) bool {
	if ce == nil {
		return false
	}
	if handler == nil {
		handler = noopHandler
	}
	ce.Data = data
	ce.Handler = handler
	return true
}

// SetEventNext arms ce to expire at expires, measured on the same clock as now.
// The distance is clamped to [MinDeltaNS, MaxDeltaNS]; an expiry already in
// the past fires after the minimum delta.
func SetEventNext(ce *ClockEvent, now, expires time.Duration) bool {
	if ce == nil || ce.Next == nil {
		return false
	}

	var delta uint64
	if expires > now {
		delta = uint64(expires - now)
	}
	if delta < ce.MinDeltaNS {
		delta = ce.MinDeltaNS
	}
	if delta > ce.MaxDeltaNS {
		delta = ce.MaxDeltaNS
	}
	ticks := NSToDelta(ce, delta)
	if ticks == 0 {
		ticks = 1
	}
	return ce.Next(ce, ticks)
}
