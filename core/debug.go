package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a clock-event transition for post-mortem analysis
type Event struct {
	EventType uint8  // Event type code
	Line      uint16 // Interrupt line of the device
	Clock     uint64 // Counter value at event
	Value     uint64 // Context-dependent value
}

// Event type codes
const (
	EvtProbe  = 1 // Device probed and disarmed
	EvtArm    = 2 // Compare armed by next()
	EvtFire   = 3 // Compare-match interrupt delivered
	EvtRemove = 4 // Device removed
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	eventRing     [EventRingSize]Event
	eventRingHead uint8
	eventsEnabled bool = true

	debugChan chan string
	debugDone chan struct{}
)

// AsyncDebugDepth is the number of queued messages DebugAsync holds before dropping
const AsyncDebugDepth = 16

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, a serial port, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, AsyncDebugDepth)
	debugDone = make(chan struct{})
	go debugOutputWorker(debugChan, debugDone)
}

// StopAsyncDebug writes out every queued message and stops the worker.
// Later DebugAsync calls are dropped until InitAsyncDebug runs again.
func StopAsyncDebug() {
	if debugChan == nil {
		return
	}
	ch, done := debugChan, debugDone
	debugChan = nil
	close(ch)
	<-done
}

func debugOutputWorker(ch <-chan string, done chan<- struct{}) {
	for msg := range ch {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
	close(done)
}

// DebugPrintln writes a debug message using the platform-specific writer
// Blocks if debug is enabled (use DebugAsync from interrupt context)
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Drops the message if the channel is full
func DebugAsync(msg string) {
	if debugChan != nil && debugEnabled {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// RecordEvent captures an event in the ring buffer.
// Safe from interrupt context: no allocation, no locking.
func RecordEvent(eventType uint8, line uint16, clock, value uint64) {
	if !eventsEnabled {
		return
	}
	idx := eventRingHead
	eventRing[idx] = Event{
		EventType: eventType,
		Line:      line,
		Clock:     clock,
		Value:     value,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the recorded events, oldest first
func Events() []Event {
	var out []Event
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// EventName returns the display name of an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtProbe:
		return "PROBE"
	case EvtArm:
		return "ARM"
	case EvtFire:
		return "FIRE"
	case EvtRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// DumpEventRing outputs the event ring buffer through the debug writer
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENTS] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[EVENTS] " + EventName(evt.EventType) +
			" irq=" + itoa(int(evt.Line)) +
			" clock=" + utoa64(evt.Clock) +
			" v=" + utoa64(evt.Value))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
}
