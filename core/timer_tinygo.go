//go:build tinygo

package core

import "sync/atomic"

var systemTicksValue uint32

// getSystemTicks returns the current system time.
// The target's tick source may update it from interrupt context.
func getSystemTicks() uint32 {
	return atomic.LoadUint32(&systemTicksValue)
}

// setSystemTicks sets the system time
func setSystemTicks(ms uint32) {
	atomic.StoreUint32(&systemTicksValue, ms)
}
