//go:build !tinygo

package core

// getSystemTicks returns the current system time (regular Go implementation)
func getSystemTicks() uint32 {
	return systemTicks
}

// setSystemTicks sets the system time (regular Go implementation)
func setSystemTicks(ms uint32) {
	systemTicks = ms
}
