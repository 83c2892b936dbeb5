package core

// Clock is a monotonic millisecond time source.
// Values wrap at 2^32 (about 49.7 days); compare them with Reached and
// Elapsed rather than with < or >.
type Clock interface {
	Now() uint32
}

var (
	systemTicks uint32
	bootTime    uint32 // Time at boot for uptime calculation
)

// GetTime returns the current system time in milliseconds
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ms uint32) {
	setSystemTicks(ms)
}

// GetUptime returns milliseconds since TimerInit
func GetUptime() uint32 {
	return GetTime() - bootTime
}

// TimerInit initializes the system timer
func TimerInit() {
	bootTime = GetTime()
}

// SystemClock reads the time maintained by SetTime
type SystemClock struct{}

// Now returns the current system time
func (SystemClock) Now() uint32 {
	return GetTime()
}

// ManualClock is a Clock advanced explicitly by its owner
type ManualClock struct {
	ms uint32
}

// NewManualClock creates a ManualClock starting at ms
func NewManualClock(ms uint32) *ManualClock {
	return &ManualClock{ms: ms}
}

// Now returns the current manual time
func (c *ManualClock) Now() uint32 {
	return c.ms
}

// Set jumps to ms
func (c *ManualClock) Set(ms uint32) {
	c.ms = ms
}

// Advance moves the clock forward by ms, wrapping at 2^32
func (c *ManualClock) Advance(ms uint32) {
	c.ms += ms
}

// Elapsed returns the wrap-safe time from since to now
func Elapsed(now, since uint32) uint32 {
	return now - since
}

// Reached reports whether now is at or after deadline.
// Deadlines up to 2^31 ms away compare correctly across a wrap.
func Reached(now, deadline uint32) bool {
	return int32(now-deadline) >= 0
}
