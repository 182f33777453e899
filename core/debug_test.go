package core

import (
	"strings"
	"testing"
)

func TestEventRingOrder(t *testing.T) {
	ClearEventRing()
	defer ClearEventRing()

	RecordEvent(EvtProbe, 30, 100, 24000000)
	RecordEvent(EvtArm, 30, 200, 1000)
	RecordEvent(EvtFire, 30, 1200, 0)

	events := Events()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	want := []uint8{EvtProbe, EvtArm, EvtFire}
	for i, evt := range events {
		if evt.EventType != want[i] {
			t.Errorf("Event %d: expected %s, got %s", i, EventName(want[i]), EventName(evt.EventType))
		}
	}
}

func TestEventRingWraps(t *testing.T) {
	ClearEventRing()
	defer ClearEventRing()

	for i := 0; i < EventRingSize+5; i++ {
		RecordEvent(EvtArm, 1, uint64(i), 0)
	}

	events := Events()
	if len(events) != EventRingSize {
		t.Fatalf("Expected %d events, got %d", EventRingSize, len(events))
	}
	if events[0].Clock != 5 {
		t.Errorf("Expected oldest clock 5, got %d", events[0].Clock)
	}
	if events[len(events)-1].Clock != EventRingSize+4 {
		t.Errorf("Expected newest clock %d, got %d", EventRingSize+4, events[len(events)-1].Clock)
	}
}

func TestDumpEventRing(t *testing.T) {
	ClearEventRing()
	defer ClearEventRing()

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(s string) {})

	RecordEvent(EvtFire, 30, 18446744073709551615, 7)
	DumpEventRing()

	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %v", len(lines), lines)
	}
	if lines[1] != "[EVENTS] FIRE irq=30 clock=18446744073709551615 v=7" {
		t.Errorf("Unexpected dump line %q", lines[1])
	}
}

func TestDebugPrintlnGated(t *testing.T) {
	var got []string
	SetDebugWriter(func(s string) { got = append(got, s) })
	defer SetDebugWriter(func(s string) {})
	defer SetDebugEnabled(false)

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")

	if strings.Join(got, ",") != "shown" {
		t.Errorf("Expected only enabled output, got %v", got)
	}
}

func TestItoa(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{-42, "-42"},
		{1000000, "1000000"},
	}
	for _, tc := range tests {
		if got := itoa(tc.in); got != tc.want {
			t.Errorf("itoa(%d): expected %s, got %s", tc.in, tc.want, got)
		}
	}
	if got := utoa64(4294967295000); got != "4294967295000" {
		t.Errorf("Expected 4294967295000, got %s", got)
	}
}

func TestDebugAsyncDelivers(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(s string) {})
	SetDebugEnabled(true)
	defer SetDebugEnabled(false)

	InitAsyncDebug()
	DebugAsync("first")
	DebugAsync("second")
	StopAsyncDebug()

	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Errorf("Expected [first second], got %v", lines)
	}

	DebugAsync("after stop")
	if len(lines) != 2 {
		t.Errorf("Expected message after stop to be dropped, got %v", lines)
	}
}

func TestDebugAsyncDropsWhenFull(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	var lines []string
	SetDebugWriter(func(s string) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		lines = append(lines, s)
	})
	defer SetDebugWriter(func(s string) {})
	SetDebugEnabled(true)
	defer SetDebugEnabled(false)

	InitAsyncDebug()

	// Park the worker inside the writer so the queue only fills.
	DebugAsync("held")
	<-entered

	for i := 0; i < AsyncDebugDepth+3; i++ {
		DebugAsync("queued " + itoa(i))
	}

	close(release)
	StopAsyncDebug()

	if len(lines) != AsyncDebugDepth+1 {
		t.Fatalf("Expected %d lines, got %d", AsyncDebugDepth+1, len(lines))
	}
	if lines[0] != "held" {
		t.Errorf("Expected first line held, got %q", lines[0])
	}
	if last := lines[len(lines)-1]; last != "queued "+itoa(AsyncDebugDepth-1) {
		t.Errorf("Expected last kept line %q, got %q", "queued "+itoa(AsyncDebugDepth-1), last)
	}
}

func TestDebugAsyncGated(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(s string) {})
	SetDebugEnabled(false)

	if IsDebugEnabled() {
		t.Fatal("Expected debug disabled")
	}

	InitAsyncDebug()
	DebugAsync("hidden")
	StopAsyncDebug()

	if len(lines) != 0 {
		t.Errorf("Expected no output while disabled, got %v", lines)
	}
}
