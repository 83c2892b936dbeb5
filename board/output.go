package board

import (
	"kegboard/core"
	"kegboard/protocol"
)

// Output is a relay driven by set_output commands. An enabled relay turns
// itself off when its watchdog expires without a fresh command.
type Output struct {
	name     string
	pin      core.GPIOPin
	index    int
	enabled  bool
	watchdog core.Timer
}

// Name returns the output's protocol name
func (o *Output) Name() string {
	return o.name
}

// Enabled reports whether the relay is on
func (o *Output) Enabled() bool {
	return o.enabled
}

// SetOutput switches relay i and reports the new state. Enabling (re)arms
// the watchdog; disabling cancels it.
func (b *Board) SetOutput(i int, enabled bool) error {
	o := b.Output(i)
	if o == nil {
		return ErrNoOutput
	}
	if err := b.gpio.SetPin(o.pin, enabled); err != nil {
		return err
	}
	o.enabled = enabled

	if enabled {
		o.watchdog.WakeTime = b.clock.Now() + b.cfg.RelayWatchdog
		b.sched.ScheduleTimer(&o.watchdog)
	} else {
		b.sched.CancelTimer(&o.watchdog)
	}

	b.sendOutputStatus(o)
	return nil
}

func (b *Board) relayWatchdog(i int) func(*core.Timer) uint8 {
	return func(*core.Timer) uint8 {
		o := &b.outputs[i]
		core.DebugPrintln("[RELAY] watchdog expired on " + o.name)
		if err := b.gpio.SetPin(o.pin, false); err != nil {
			core.DebugPrintln("[RELAY] " + o.name + ": " + err.Error())
		}
		o.enabled = false
		b.sendOutputStatus(o)
		return core.SF_DONE
	}
}

func outputMode(enabled bool) uint16 {
	if enabled {
		return protocol.OutputEnabled
	}
	return protocol.OutputDisabled
}
