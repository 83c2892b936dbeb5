package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// BusEvent captures a bus or protocol event for post-mortem analysis
type BusEvent struct {
	EventType uint8  // Event type code
	Device    uint8  // Registry handle, output index or ROM CRC byte
	Clock     uint32 // System clock at event
	Value     uint32 // Context-dependent value
}

// Event type codes
const (
	EvtConvertStart   = 1 // Temperature conversion started
	EvtFetchValid     = 2 // Scratchpad fetched and validated
	EvtFetchInvalid   = 3 // Scratchpad rejected
	EvtDeviceAppeared = 4 // Registry tracked a new or returning device
	EvtDeviceVanished = 5 // Registry marked a device absent
	EvtRegistryFull   = 6 // Discovery dropped for lack of room
	EvtFrameDropped   = 7 // Inbound frame rejected
	EvtEmitFailed     = 8 // Outbound frame could not be built or queued
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	eventRing     [EventRingSize]BusEvent
	eventRingHead uint8        // Next write position
	eventsEnabled bool  = true // Always capture events

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, a logger, etc.
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
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16) // Buffer 16 messages
	go debugOutputWorker()
}

// debugOutputWorker runs in background, drains debug channel
func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// With async output started the message is queued instead, and dropped
// if the queue is full.
func DebugPrintln(msg string) {
	if !debugEnabled || debugPrintln == nil {
		return
	}
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
		}
		return
	}
	debugPrintln(msg)
}

// RecordEvent captures an event in the ring buffer.
// This is always non-blocking and allocation free.
func RecordEvent(eventType, device uint8, clock, value uint32) {
	if !eventsEnabled {
		return
	}
	idx := eventRingHead
	eventRing[idx] = BusEvent{
		EventType: eventType,
		Device:    device,
		Clock:     clock,
		Value:     value,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// RecentEvents returns recorded events, oldest first
func RecentEvents() []BusEvent {
	out := make([]BusEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// EventName returns a short name for an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtConvertStart:
		return "CONVERT"
	case EvtFetchValid:
		return "FETCH_OK"
	case EvtFetchInvalid:
		return "FETCH_BAD"
	case EvtDeviceAppeared:
		return "APPEARED"
	case EvtDeviceVanished:
		return "VANISHED"
	case EvtRegistryFull:
		return "REG_FULL!"
	case EvtFrameDropped:
		return "RX_DROP"
	case EvtEmitFailed:
		return "TX_FAIL"
	default:
		return "UNKNOWN"
	}
}

// DumpEvents outputs the event ring buffer (call on shutdown/error)
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENTS] === Event Ring Dump ===")
	for _, evt := range RecentEvents() {
		debugPrintln("[EVENTS] " + EventName(evt.EventType) +
			" dev=" + itoa(int(evt.Device)) +
			" clock=" + utoa(evt.Clock) +
			" v=" + utoa(evt.Value))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// ClearEvents clears the event buffer
func ClearEvents() {
	for i := range eventRing {
		eventRing[i] = BusEvent{}
	}
	eventRingHead = 0
}
