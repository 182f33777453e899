package sim

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"cetimer/clockevent"
	"cetimer/core"

	"github.com/google/shlex"
)

var (
	ErrQuit           = errors.New("quit")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("bad arguments")
)

// Exec runs one shell line against the bench. It returns ErrQuit when the
// line asks to leave the shell.
func (b *Bench) Exec(line string, out io.Writer) error {
	args, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "quit", "exit", "q":
		return ErrQuit

	case "help", "?":
		printShellHelp(out)

	case "next":
		ticks, err := uintArg(args, 1)
		if err != nil {
			return err
		}
		ce, err := b.ClockEvent()
		if err != nil {
			return err
		}
		ce.Next(ce, ticks)
		fmt.Fprintf(out, "armed: compare=%d counter=%d\n", b.Timer.Compare, b.Timer.Counter)

	case "after":
		d, err := durationArg(args, 1)
		if err != nil {
			return err
		}
		ce, err := b.ClockEvent()
		if err != nil {
			return err
		}
		now, _ := b.Now()
		clockevent.SetEventNext(ce, now, now+d)
		fmt.Fprintf(out, "armed: compare=%d counter=%d\n", b.Timer.Compare, b.Timer.Counter)

	case "advance":
		ticks, err := uintArg(args, 1)
		if err != nil {
			return err
		}
		before := len(b.fires)
		b.Timer.Advance(ticks)
		for _, f := range b.fires[before:] {
			fmt.Fprintf(out, "fire #%d at counter=%d (%v)\n", f.Seq, f.Counter, f.Elapsed)
		}

	case "ctrl":
		ctrl := b.Timer.ReadControl()
		fmt.Fprintf(out, "ctrl=%#x enable=%t imask=%t istatus=%t\n", ctrl,
			ctrl&0x1 != 0, ctrl&0x2 != 0, ctrl&0x4 != 0)

	case "devices":
		b.Describe(out)

	case "ring":
		for _, evt := range core.Events() {
			fmt.Fprintf(out, "%-6s irq=%d clock=%d value=%d\n",
				core.EventName(evt.EventType), evt.Line, evt.Clock, evt.Value)
		}

	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}

func uintArg(args []string, i int) (uint64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("%w: %s needs a tick count", ErrUsage, args[0])
	}
	v, err := strconv.ParseUint(args[i], 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return v, nil
}

func durationArg(args []string, i int) (time.Duration, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("%w: %s needs a duration", ErrUsage, args[0])
	}
	d, err := time.ParseDuration(args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return d, nil
}

func printShellHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  next <ticks>      arm the comparator <ticks> ahead")
	fmt.Fprintln(out, "  after <duration>  arm through the clock-event layer (e.g. 250us)")
	fmt.Fprintln(out, "  advance <ticks>   move the counter forward")
	fmt.Fprintln(out, "  ctrl              show CNTP_CTL")
	fmt.Fprintln(out, "  devices           list clock event devices")
	fmt.Fprintln(out, "  ring              dump the event ring")
	fmt.Fprintln(out, "  quit              leave the shell")
}
