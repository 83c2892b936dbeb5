package board

import (
	"kegboard/core"
)

const (
	DefaultSelfTestInterval = 500 // ms between pulse trains
	DefaultSelfTestPulses   = 10
)

// SelfTestConfig drives a pulse train on Pin. Jumpering Pin to a meter
// input checks the meter path end to end without any beer flowing.
type SelfTestConfig struct {
	Pin      core.GPIOPin
	Interval uint32
	Pulses   int
}

func (c SelfTestConfig) withDefaults() SelfTestConfig {
	if c.Interval == 0 {
		c.Interval = DefaultSelfTestInterval
	}
	if c.Pulses <= 0 {
		c.Pulses = DefaultSelfTestPulses
	}
	return c
}

// selfTestPulse toggles the selftest pin once per configured pulse and
// leaves it low
func (b *Board) selfTestPulse(t *core.Timer) uint8 {
	pin := b.selfTest.Pin
	for i := 0; i < b.selfTest.Pulses; i++ {
		if err := b.gpio.SetPin(pin, true); err != nil {
			core.DebugPrintln("[SELFTEST] pin " + core.Itoa(int(pin)) + ": " + err.Error())
			break
		}
		b.gpio.SetPin(pin, false)
	}
	b.stats.SelfTestTrains++

	t.WakeTime += b.selfTest.Interval
	if core.Reached(b.clock.Now(), t.WakeTime) {
		t.WakeTime = b.clock.Now() + b.selfTest.Interval
	}
	return core.SF_RESCHEDULE
}
