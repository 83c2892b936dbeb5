package core

// Critical runs fn with interrupts disabled.
// Use it for state shared with interrupt handlers; keep fn short.
func Critical(fn func()) {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	fn()
}
