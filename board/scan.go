package board

import (
	"kegboard/core"
	"kegboard/registry"
)

// scanBuses searches both buses and reports presence bus changes
func (b *Board) scanBuses(t *core.Timer) uint8 {
	if b.thermo != nil {
		changes, err := b.thermo.Scan()
		if err != nil {
			b.scanFailed("thermo", err)
		} else {
			for _, h := range changes.Appeared {
				// a full registry may hand this slot to a new address
				b.thermoNames[h] = ThermoName(b.thermo.Get(h).Address)
				core.DebugPrintln("[THERMO] found " + b.thermoNames[h])
			}
			for _, h := range changes.Vanished {
				core.DebugPrintln("[THERMO] lost " + b.thermoNames[h])
			}
			b.checkDropped("thermo", changes)
		}
	}

	if b.presence != nil {
		changes, err := b.presence.Scan()
		if err != nil {
			b.scanFailed("presence", err)
		} else {
			for _, h := range changes.Appeared {
				b.sendPresence(b.presence.Get(h).Address, true)
			}
			for _, h := range changes.Vanished {
				b.sendPresence(b.presence.Get(h).Address, false)
			}
			b.checkDropped("presence", changes)
		}
	}

	t.WakeTime = b.clock.Now() + b.cfg.ScanInterval
	return core.SF_RESCHEDULE
}

func (b *Board) scanFailed(bus string, err error) {
	b.stats.ScanErrors++
	core.DebugPrintln("[" + bus + "] scan failed: " + err.Error())
}

func (b *Board) checkDropped(bus string, changes registry.Changes) {
	if changes.Err != nil {
		core.DebugPrintln("[" + bus + "] " + changes.Err.Error() + ", dropped " + core.Itoa(changes.Dropped))
	}
}
