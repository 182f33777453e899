//go:build tinygo && arm

package main

import (
	_ "embed"
	"machine"
	"runtime"
	"time"

	"cetimer/clockevent"
	"cetimer/core"
	"cetimer/driver/armv7timer"
	"cetimer/dtree"
	"cetimer/irq"
)

//go:embed board.json
var boardTree []byte

// tickPeriod is the periodic event programmed on the timer
const tickPeriod = time.Millisecond

var ticks uint32

func main() {
	machine.Serial.Configure(machine.UARTConfig{})
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s))
		machine.Serial.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	// The GIC is polled: the timer PPI is fed to the table from ISTATUS.
	table := irq.NewTable(96)
	irq.SetController(table)

	if _, err := armv7timer.Register(armv7timer.CP15{}, nil, nil); err != nil {
		core.DebugPrintln("register ce-armv7-timer: " + err.Error())
		return
	}

	nodes, err := dtree.LoadJSON(boardTree)
	if err != nil {
		core.DebugPrintln("device tree: " + err.Error())
		return
	}
	core.Default().ProbeTree(nodes)

	ce, ok := clockevent.SearchFirst(core.Default())
	if !ok {
		core.DebugPrintln("no clock event device")
		return
	}
	line, _ := armv7timer.Line(ce)
	clockevent.SetEventHandler(ce, onTick, nil)
	clockevent.SetEventNext(ce, 0, tickPeriod)

	regs := armv7timer.CP15{}
	var dumped uint32
	for {
		if regs.ReadControl()&armv7timer.CtrlIStatus != 0 {
			table.Handle(line)
		}
		if ticks-dumped >= 1000 {
			dumped = ticks
			core.DumpEventRing()
		}
		runtime.Gosched()
	}
}

// onTick runs in interrupt context: count, then program the next period
func onTick(ce *clockevent.ClockEvent, data any) {
	ticks++
	if ticks%1000 == 0 {
		core.DebugAsync("[TICK] " + core.Utoa64(uint64(ticks)))
	}
	ce.Next(ce, clockevent.NSToDelta(ce, uint64(tickPeriod)))
}
