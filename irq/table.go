package irq

// action is the handler bound to one line
type action struct {
	handler Handler
	data    any
	typ     Type
	enabled bool
	pending bool
	count   uint32
}

// Table is a software interrupt controller: a fixed vector of lines,
// each dispatching to at most one handler. Targets feed hardware
// interrupt numbers into Handle from their exception vector.
type Table struct {
	lines []action
	taken []bool
}

// NewTable creates a controller with lines numbered 0..count-1
func NewTable(count int) *Table {
	return &Table{
		lines: make([]action, count),
		taken: make([]bool, count),
	}
}

func (t *Table) IsValid(line int) bool {
	return line >= 0 && line < len(t.lines)
}

func (t *Table) Request(line int, h Handler, typ Type, data any) error {
	if !t.IsValid(line) {
		return ErrInvalid
	}
	if h == nil {
		return ErrNilHandler
	}
	if t.taken[line] {
		return ErrBusy
	}
	t.lines[line] = action{handler: h, data: data, typ: typ, enabled: true}
	t.taken[line] = true
	return nil
}

func (t *Table) Free(line int) {
	if !t.IsValid(line) {
		return
	}
	t.lines[line] = action{}
	t.taken[line] = false
}

// Requested reports whether a line currently has a handler
func (t *Table) Requested(line int) bool {
	return t.IsValid(line) && t.taken[line]
}

// InUse returns the number of requested lines
func (t *Table) InUse() int {
	n := 0
	for _, taken := range t.taken {
		if taken {
			n++
		}
	}
	return n
}

// Enable unmasks a line and delivers an interrupt that arrived while it was masked
func (t *Table) Enable(line int) {
	if !t.Requested(line) {
		return
	}
	a := &t.lines[line]
	a.enabled = true
	if a.pending {
		a.pending = false
		a.count++
		a.handler(a.data)
	}
}

// Disable masks a line. Interrupts raised while masked are latched as pending.
func (t *Table) Disable(line int) {
	if !t.Requested(line) {
		return
	}
	t.lines[line].enabled = false
}

// Handle dispatches one interrupt on a line. It reports whether a handler ran.
func (t *Table) Handle(line int) bool {
	if !t.Requested(line) {
		return false
	}
	a := &t.lines[line]
	if !a.enabled {
		a.pending = true
		return false
	}
	a.count++
	a.handler(a.data)
	return true
}

// Count returns how many times a line's handler has run since it was requested
func (t *Table) Count(line int) uint32 {
	if !t.Requested(line) {
		return 0
	}
	return t.lines[line].count
}

// TypeOf returns the trigger type a line was requested with
func (t *Table) TypeOf(line int) Type {
	if !t.Requested(line) {
		return TypeNone
	}
	return t.lines[line].typ
}
