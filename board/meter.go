package board

import (
	"sync/atomic"

	"kegboard/core"
)

// Meter counts flow meter pulses. Pulse is called from the pin interrupt;
// everything else runs in the main loop.
type Meter struct {
	name     string
	ticks    atomic.Uint32
	reported uint32
}

// Pulse records one meter pulse. Safe to call from an interrupt handler.
func (m *Meter) Pulse() {
	m.ticks.Add(1)
}

// Ticks returns the running pulse count
func (m *Meter) Ticks() uint32 {
	return m.ticks.Load()
}

// Name returns the meter's protocol name
func (m *Meter) Name() string {
	return m.name
}

// meterUpdate reports every meter whose count changed since the last
// report, at most once per update interval
func (b *Board) meterUpdate(t *core.Timer) uint8 {
	for i := 0; i < b.numMeters; i++ {
		m := &b.meters[i]
		ticks := m.Ticks()
		if ticks == m.reported {
			continue
		}
		if b.sendMeterStatus(m, ticks) {
			m.reported = ticks
		}
	}
	t.WakeTime += b.cfg.MeterUpdateInterval
	if core.Reached(b.clock.Now(), t.WakeTime) {
		// Fell behind; skip the missed slots
		t.WakeTime = b.clock.Now() + b.cfg.MeterUpdateInterval
	}
	return core.SF_RESCHEDULE
}
