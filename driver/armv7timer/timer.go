// Package armv7timer drives the ARMv7 generic timer's physical counter as a
// clock-event device. The counter is free-running; the compare register
// raises a per-core interrupt once the counter reaches it.
package armv7timer

import (
	"errors"

	"cetimer/clockevent"
	"cetimer/core"
	"cetimer/dtree"
	"cetimer/irq"
)

// DriverName is matched against configuration node names
const DriverName = "ce-armv7-timer"

const (
	// maxDeltaTicks is the furthest event the driver programs
	maxDeltaTicks = 0xffffffff

	// maxSec is the conversion range handed to the mult/shift calculation
	maxSec = 10
)

var (
	ErrInvalidIRQ   = errors.New("invalid or missing interrupt")
	ErrUnusableRate = errors.New("frequency too high to convert to nanoseconds")
)

// ProbeError reports which step of a probe failed
type ProbeError struct {
	Node string
	Step string
	Err  error
}

func (e *ProbeError) Error() string {
	return DriverName + ": " + e.Node + ": " + e.Step + ": " + e.Err.Error()
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// timerData is the driver-private state hung off ClockEvent.Priv
type timerData struct {
	line int
	regs Registers
}

// Driver is the ce-armv7-timer driver. One instance serves the timer of
// the core it runs on.
type Driver struct {
	regs Registers
	irqc irq.Controller
	reg  *core.Registry
}

// New creates the driver. A nil controller means the global one set with
// irq.SetController; a nil registry means core.Default().
func New(regs Registers, irqc irq.Controller, reg *core.Registry) *Driver {
	if reg == nil {
		reg = core.Default()
	}
	return &Driver{regs: regs, irqc: irqc, reg: reg}
}

// Register creates the driver and adds it to the registry
func Register(regs Registers, irqc irq.Controller, reg *core.Registry) (*Driver, error) {
	d := New(regs, irqc, reg)
	if err := d.reg.RegisterDriver(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) Name() string {
	return DriverName
}

func (d *Driver) controller() irq.Controller {
	if d.irqc != nil {
		return d.irqc
	}
	return irq.MustController()
}

// unwind collects release steps of a probe in progress and runs them in
// reverse order unless the probe commits.
type unwind struct {
	steps []func()
}

func (u *unwind) push(f func()) {
	u.steps = append(u.steps, f)
}

func (u *unwind) commit() {
	u.steps = nil
}

func (u *unwind) run() {
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i]()
	}
	u.steps = nil
}

// Probe creates the clock event for a node. The device is left disarmed.
// On failure everything acquired is released and nil is returned.
func (d *Driver) Probe(node dtree.Node) (*core.Device, error) {
	irqc := d.controller()

	line := dtree.ReadInt(node, "interrupt", -1)
	if !irqc.IsValid(line) {
		return nil, &ProbeError{Node: node.Name(), Step: "interrupt", Err: ErrInvalidIRQ}
	}

	var rate uint64
	if r := dtree.ReadLong(node, "clock-frequency", -1); r > 0 {
		rate = uint64(r)
	} else {
		rate = timerFrequency(d.regs)
	}

	var u unwind
	defer u.run()

	name, err := d.reg.AllocDeviceName(dtree.ReadName(node), -1)
	if err != nil {
		return nil, &ProbeError{Node: node.Name(), Step: "name", Err: err}
	}
	u.push(func() { d.reg.FreeDeviceName(name) })

	pdat := &timerData{line: line, regs: d.regs}
	ce := &clockevent.ClockEvent{
		Name: name,
		Next: next,
		Priv: pdat,
	}
	clockevent.CalcMultShift(ce, rate, maxSec)
	if ce.Mult == 0 {
		return nil, &ProbeError{Node: node.Name(), Step: "frequency", Err: ErrUnusableRate}
	}
	clockevent.CalcBounds(ce, 0x1, maxDeltaTicks)

	if err := irqc.Request(line, interrupt, irq.TypeNone, ce); err != nil {
		return nil, &ProbeError{Node: node.Name(), Step: "request irq", Err: err}
	}
	u.push(func() { irqc.Free(line) })

	timerCompare(d.regs, maxDeltaTicks)
	timerInterruptDisable(d.regs)
	timerStop(d.regs)

	dev, err := clockevent.Register(d.reg, ce, d)
	if err != nil {
		return nil, &ProbeError{Node: node.Name(), Step: "register", Err: err}
	}
	u.commit()

	core.RecordEvent(core.EvtProbe, uint16(line), d.regs.ReadCounter(), rate)
	core.DebugPrintln("[" + DriverName + "] " + name +
		" irq=" + core.Itoa(line) +
		" freq=" + core.Utoa64(rate) +
		" mult=" + core.Utoa64(uint64(ce.Mult)) +
		" shift=" + core.Utoa64(uint64(ce.Shift)))
	return dev, nil
}

// Remove undoes a successful Probe
func (d *Driver) Remove(dev *core.Device) {
	if dev == nil {
		return
	}
	ce, ok := dev.Priv.(*clockevent.ClockEvent)
	if !ok || ce == nil {
		return
	}
	pdat := ce.Priv.(*timerData)

	clockevent.Unregister(d.reg, ce)
	d.controller().Free(pdat.line)
	d.reg.FreeDeviceName(ce.Name)
	ce.Priv = nil

	core.RecordEvent(core.EvtRemove, uint16(pdat.line), pdat.regs.ReadCounter(), 0)
	core.DebugPrintln("[" + DriverName + "] " + ce.Name + " removed")
}

// Suspend does nothing: the counter keeps running in low-power states and
// the next arm reprograms the comparator.
func (d *Driver) Suspend(dev *core.Device) {}

func (d *Driver) Resume(dev *core.Device) {}

// interrupt is the compare-match handler. It runs in interrupt context.
func interrupt(data any) {
	ce := data.(*clockevent.ClockEvent)
	if pdat, ok := ce.Priv.(*timerData); ok {
		core.RecordEvent(core.EvtFire, uint16(pdat.line), pdat.regs.ReadCounter(), 0)
	}
	ce.Handler(ce, ce.Data)
}

// next arms the comparator ticks from now. The interrupt is unmasked
// before the timer is enabled so the match cannot be missed.
func next(ce *clockevent.ClockEvent, ticks uint64) bool {
	pdat := ce.Priv.(*timerData)
	timerCompare(pdat.regs, ticks)
	timerInterruptEnable(pdat.regs)
	timerStart(pdat.regs)
	core.RecordEvent(core.EvtArm, uint16(pdat.line), pdat.regs.ReadCounter(), ticks)
	return true
}

// Line returns the interrupt line a probed clock event owns
func Line(ce *clockevent.ClockEvent) (int, bool) {
	pdat, ok := ce.Priv.(*timerData)
	if !ok {
		return -1, false
	}
	return pdat.line, true
}
