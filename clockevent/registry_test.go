package clockevent

import (
	"errors"
	"testing"
	"time"

	"cetimer/core"
)

type armRecorder struct {
	ticks []uint64
}

func (r *armRecorder) next(ce *ClockEvent, ticks uint64) bool {
	r.ticks = append(r.ticks, ticks)
	return true
}

func newRegisteredEvent(t *testing.T, reg *core.Registry, freq uint64) (*ClockEvent, *armRecorder) {
	t.Helper()
	rec := &armRecorder{}
	ce := newTestEvent(freq)
	ce.Name = "ce-test.0"
	ce.Next = rec.next
	if _, err := Register(reg, ce, nil); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return ce, rec
}

func TestRegisterValidates(t *testing.T) {
	reg := core.NewRegistry()

	tests := []struct {
		name string
		ce   *ClockEvent
		want error
	}{
		{"nil", nil, ErrNil},
		{"no name", &ClockEvent{Next: (&armRecorder{}).next}, ErrNoName},
		{"no next", &ClockEvent{Name: "ce.0"}, ErrNoNext},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Register(reg, tc.ce, nil); !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRegisterInstallsNoopHandler(t *testing.T) {
	reg := core.NewRegistry()
	ce, _ := newRegisteredEvent(t, reg, 24000000)

	if ce.Handler == nil {
		t.Fatal("Expected a default handler")
	}
	ce.Handler(ce, nil)
}

func TestRegisterDuplicateName(t *testing.T) {
	reg := core.NewRegistry()
	newRegisteredEvent(t, reg, 24000000)

	dup := newTestEvent(24000000)
	dup.Name = "ce-test.0"
	dup.Next = (&armRecorder{}).next
	if _, err := Register(reg, dup, nil); !errors.Is(err, core.ErrDeviceExists) {
		t.Errorf("Expected ErrDeviceExists, got %v", err)
	}
}

func TestSearchAndUnregister(t *testing.T) {
	reg := core.NewRegistry()
	ce, _ := newRegisteredEvent(t, reg, 24000000)

	if got, ok := Search(reg, "ce-test.0"); !ok || got != ce {
		t.Error("Search did not find the clock event")
	}
	if got, ok := SearchFirst(reg); !ok || got != ce {
		t.Error("SearchFirst did not find the clock event")
	}

	if err := Unregister(reg, ce); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if _, ok := SearchFirst(reg); ok {
		t.Error("Expected no clock event after unregister")
	}
	if err := Unregister(reg, ce); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSetEventHandler(t *testing.T) {
	reg := core.NewRegistry()
	ce, _ := newRegisteredEvent(t, reg, 24000000)

	var gotData any
	SetEventHandler(ce, func(ce *ClockEvent, data any) { gotData = data }, 42)
	ce.Handler(ce, ce.Data)
	if gotData != 42 {
		t.Errorf("Expected handler data 42, got %v", gotData)
	}

	SetEventHandler(ce, nil, nil)
	if ce.Handler == nil {
		t.Error("Expected nil handler to restore the no-op")
	}
	if SetEventHandler(nil, nil, nil) {
		t.Error("Expected false for nil clock event")
	}
}

func TestSetEventNext(t *testing.T) {
	reg := core.NewRegistry()
	ce, rec := newRegisteredEvent(t, reg, 1000000)

	tests := []struct {
		name    string
		now     time.Duration
		expires time.Duration
		ticks   uint64
	}{
		{"one millisecond", 0, time.Millisecond, 1000},
		{"relative to now", 5 * time.Second, 5*time.Second + 250*time.Microsecond, 250},
		{"below minimum clamps up", 0, 10 * time.Nanosecond, 1},
		{"in the past clamps up", time.Second, 0, 1},
		{"beyond maximum clamps down", 0, 2 * time.Hour, 0xffffffff},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec.ticks = nil
			if !SetEventNext(ce, tc.now, tc.expires) {
				t.Fatal("SetEventNext returned false")
			}
			if len(rec.ticks) != 1 || rec.ticks[0] != tc.ticks {
				t.Errorf("Expected %d ticks, got %v", tc.ticks, rec.ticks)
			}
		})
	}

	if SetEventNext(nil, 0, time.Second) {
		t.Error("Expected false for nil clock event")
	}
}
