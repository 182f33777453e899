package armv7timer

// Register identifiers recorded by Sim
const (
	RegControl = iota
	RegCompare
)

// Write is one register write observed by Sim
type Write struct {
	Reg   int
	Value uint64
}

// Sim is a software model of the physical timer. The counter free-runs
// and only moves when Advance is called. The comparator fires once when
// ENABLE is set, IMASK is clear and the counter has reached the compare
// value; writing a new compare value re-arms it.
type Sim struct {
	Counter   uint64
	Control   uint32
	Compare   uint64
	Frequency uint32

	// OnFire is invoked when the comparator fires (the timer PPI)
	OnFire func()

	Writes []Write
	fired  bool
}

// NewSim creates a simulated timer reporting freq through CNTFRQ
func NewSim(freq uint32) *Sim {
	return &Sim{Frequency: freq}
}

// IRQRaiser is the part of an interrupt controller Sim raises lines on
type IRQRaiser interface {
	Handle(line int) bool
}

// Attach routes comparator matches to a line on an interrupt controller
func (s *Sim) Attach(c IRQRaiser, line int) {
	s.OnFire = func() { c.Handle(line) }
}

func (s *Sim) ReadControl() uint32 {
	ctrl := s.Control &^ CtrlIStatus
	if s.conditionMet() {
		ctrl |= CtrlIStatus
	}
	return ctrl
}

func (s *Sim) WriteControl(v uint32) {
	s.Control = v &^ CtrlIStatus
	s.Writes = append(s.Writes, Write{Reg: RegControl, Value: uint64(v)})
	s.check()
}

func (s *Sim) ReadCounter() uint64 {
	return s.Counter
}

func (s *Sim) WriteCompare(v uint64) {
	s.Compare = v
	s.fired = false
	s.Writes = append(s.Writes, Write{Reg: RegCompare, Value: v})
	s.check()
}

func (s *Sim) ReadFrequency() uint32 {
	return s.Frequency
}

// Advance moves the counter forward and fires the comparator if due
func (s *Sim) Advance(ticks uint64) {
	s.Counter += ticks
	s.check()
}

// Armed reports whether the timer is enabled with its interrupt unmasked
func (s *Sim) Armed() bool {
	return s.Control&CtrlEnable != 0 && s.Control&CtrlIMask == 0
}

// Remaining returns the ticks left until the compare value, 0 if already due
func (s *Sim) Remaining() uint64 {
	if int64(s.Compare-s.Counter) <= 0 {
		return 0
	}
	return s.Compare - s.Counter
}

// ResetWrites clears the write log
func (s *Sim) ResetWrites() {
	s.Writes = nil
}

// conditionMet compares modulo 2^64 so a compare value that wrapped still matches
func (s *Sim) conditionMet() bool {
	return s.Control&CtrlEnable != 0 && int64(s.Counter-s.Compare) >= 0
}

func (s *Sim) check() {
	if s.fired || !s.Armed() || !s.conditionMet() {
		return
	}
	s.fired = true
	if s.OnFire != nil {
		s.OnFire()
	}
}
