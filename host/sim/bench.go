// Package sim runs the clock-event stack on the host against a simulated
// physical timer, for bring-up of device trees without hardware.
package sim

import (
	"errors"
	"fmt"
	"io"
	"time"

	"cetimer/clockevent"
	"cetimer/core"
	"cetimer/driver/armv7timer"
	"cetimer/dtree"
	"cetimer/irq"
)

// IRQLines is the size of the simulated interrupt controller (a GIC's
// SGI+PPI+SPI range for a small SoC).
const IRQLines = 128

var ErrNoClockEvent = errors.New("no clock event device probed")

// Fire is one delivered expiry
type Fire struct {
	Seq     int
	Counter uint64        // Counter value at delivery
	Elapsed time.Duration // Counter value converted to nanoseconds
}

// Bench wires a registry, an interrupt table and a simulated timer to the
// ce-armv7-timer driver.
type Bench struct {
	Registry *core.Registry
	IRQ      *irq.Table
	Timer    *armv7timer.Sim
	Driver   *armv7timer.Driver
	Devices  []*core.Device

	fires []Fire
}

// NewBench creates a bench whose timer reports hwFreq through CNTFRQ
func NewBench(hwFreq uint32) (*Bench, error) {
	b := &Bench{
		Registry: core.NewRegistry(),
		IRQ:      irq.NewTable(IRQLines),
		Timer:    armv7timer.NewSim(hwFreq),
	}
	drv, err := armv7timer.Register(b.Timer, b.IRQ, b.Registry)
	if err != nil {
		return nil, fmt.Errorf("register driver: %w", err)
	}
	b.Driver = drv
	return b, nil
}

// Probe probes every node and wires the first clock event to the timer's
// interrupt line and the bench's fire log.
func (b *Bench) Probe(nodes []dtree.Node) ([]*core.Device, error) {
	for _, n := range nodes {
		dev, err := b.Registry.ProbeNode(n)
		if err != nil {
			if errors.Is(err, core.ErrNoMatchingProbe) {
				continue
			}
			return b.Devices, fmt.Errorf("probe %s: %w", n.Name(), err)
		}
		b.Devices = append(b.Devices, dev)
	}

	ce, ok := clockevent.SearchFirst(b.Registry)
	if !ok {
		return b.Devices, ErrNoClockEvent
	}
	line, _ := armv7timer.Line(ce)
	b.Timer.Attach(b.IRQ, line)
	clockevent.SetEventHandler(ce, b.onEvent, nil)
	return b.Devices, nil
}

func (b *Bench) onEvent(ce *clockevent.ClockEvent, data any) {
	b.fires = append(b.fires, Fire{
		Seq:     len(b.fires) + 1,
		Counter: b.Timer.Counter,
		Elapsed: time.Duration(clockevent.DeltaToNS(ce, b.Timer.Counter)),
	})
	// Interrupt context: queue the line instead of writing it.
	if core.IsDebugEnabled() {
		core.DebugAsync("[FIRE] " + ce.Name + " #" + core.Itoa(len(b.fires)) +
			" counter=" + core.Utoa64(b.Timer.Counter))
	}
}

// ClockEvent returns the clock event driving the bench
func (b *Bench) ClockEvent() (*clockevent.ClockEvent, error) {
	ce, ok := clockevent.SearchFirst(b.Registry)
	if !ok {
		return nil, ErrNoClockEvent
	}
	return ce, nil
}

// Now returns the simulated time since the counter started
func (b *Bench) Now() (time.Duration, error) {
	ce, err := b.ClockEvent()
	if err != nil {
		return 0, err
	}
	return time.Duration(clockevent.DeltaToNS(ce, b.Timer.Counter)), nil
}

// Run programs count periodic events delta apart, advancing the counter
// to each expiry, and returns the fires observed.
func (b *Bench) Run(count int, delta time.Duration) ([]Fire, error) {
	ce, err := b.ClockEvent()
	if err != nil {
		return nil, err
	}

	start := len(b.fires)
	for i := 0; i < count; i++ {
		now := time.Duration(clockevent.DeltaToNS(ce, b.Timer.Counter))
		if !clockevent.SetEventNext(ce, now, now+delta) {
			return b.fires[start:], fmt.Errorf("event %d: arm rejected", i)
		}
		b.Timer.Advance(b.Timer.Remaining())
	}
	return b.fires[start:], nil
}

// Fires returns every expiry delivered so far
func (b *Bench) Fires() []Fire {
	return b.fires
}

// Describe writes one line per probed clock event
func (b *Bench) Describe(w io.Writer) {
	for _, dev := range b.Registry.ListDevices(core.DeviceTypeClockEvent) {
		ce := dev.Priv.(*clockevent.ClockEvent)
		fmt.Fprintf(w, "%-20s freq=%dHz mult=%d shift=%d min=%dns max=%dns\n",
			ce.Name, ce.Frequency, ce.Mult, ce.Shift, ce.MinDeltaNS, ce.MaxDeltaNS)
	}
}

// Close removes every device and the driver
func (b *Bench) Close() error {
	b.Devices = nil
	return b.Registry.UnregisterDriver(b.Driver)
}
