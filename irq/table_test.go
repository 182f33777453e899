package irq

import (
	"errors"
	"testing"
)

func TestRequestAndHandle(t *testing.T) {
	table := NewTable(32)

	var got []any
	h := func(data any) { got = append(got, data) }

	if err := table.Request(30, h, TypeNone, "timer"); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if !table.Handle(30) {
		t.Error("Expected handler to run")
	}
	if len(got) != 1 || got[0] != "timer" {
		t.Errorf("Expected handler called once with data, got %v", got)
	}
	if table.Count(30) != 1 {
		t.Errorf("Expected count 1, got %d", table.Count(30))
	}
	if table.Handle(31) {
		t.Error("Expected unrequested line to be ignored")
	}
}

func TestRequestErrors(t *testing.T) {
	table := NewTable(32)
	h := func(data any) {}

	tests := []struct {
		name string
		line int
		h    Handler
		want error
	}{
		{"negative line", -1, h, ErrInvalid},
		{"line past end", 32, h, ErrInvalid},
		{"nil handler", 3, nil, ErrNilHandler},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := table.Request(tc.line, tc.h, TypeNone, nil); !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}

	table.Request(5, h, TypeLevelHigh, nil)
	if err := table.Request(5, h, TypeNone, nil); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
	if table.TypeOf(5) != TypeLevelHigh {
		t.Errorf("Expected first request's type to be kept, got %d", table.TypeOf(5))
	}
}

func TestFreeReleasesLine(t *testing.T) {
	table := NewTable(8)
	h := func(data any) {}

	table.Request(2, h, TypeNone, nil)
	if table.InUse() != 1 {
		t.Errorf("Expected 1 line in use, got %d", table.InUse())
	}
	table.Free(2)
	if table.Requested(2) || table.InUse() != 0 {
		t.Error("Expected line to be released")
	}
	if err := table.Request(2, h, TypeNone, nil); err != nil {
		t.Errorf("Expected freed line to be requestable, got %v", err)
	}
}

func TestMaskedLineLatchesPending(t *testing.T) {
	table := NewTable(8)
	calls := 0
	table.Request(1, func(data any) { calls++ }, TypeNone, nil)

	table.Disable(1)
	if table.Handle(1) {
		t.Error("Expected masked line not to dispatch")
	}
	if calls != 0 {
		t.Errorf("Expected 0 calls while masked, got %d", calls)
	}

	table.Enable(1)
	if calls != 1 {
		t.Errorf("Expected pending interrupt delivered on enable, got %d calls", calls)
	}
	table.Enable(1)
	if calls != 1 {
		t.Errorf("Expected pending to be delivered once, got %d calls", calls)
	}
}

func TestMustControllerPanicsWhenUnset(t *testing.T) {
	SetController(nil)
	defer func() {
		if recover() == nil {
			t.Error("Expected panic")
		}
	}()
	MustController()
}
