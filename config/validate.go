package config

import (
	"encoding/hex"
	"fmt"

	"github.com/sirupsen/logrus"

	"kegboard/board"
	"kegboard/onewire"
	"kegboard/registry"
)

// BoardNameMax is the longest board name the host accepts
const BoardNameMax = 8

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	b := cfg.Board

	if len(b.Name) > BoardNameMax {
		return fmt.Errorf("board name %q longer than %d characters", b.Name, BoardNameMax)
	}
	for i := 0; i < len(b.Name); i++ {
		if b.Name[i] < 0x20 || b.Name[i] > 0x7E {
			return fmt.Errorf("board name %q must be printable ASCII", b.Name)
		}
	}
	meters := b.MeterCount()
	if meters < 0 || meters > board.MaxMeters {
		return fmt.Errorf("meters: %d out of range 0..%d", meters, board.MaxMeters)
	}
	if len(b.OutputPins) > board.MaxOutputs {
		return fmt.Errorf("output_pins: %d outputs, at most %d", len(b.OutputPins), board.MaxOutputs)
	}
	seen := make(map[uint32]bool)
	for _, pin := range b.OutputPins {
		if seen[pin] {
			return fmt.Errorf("output_pins: pin %d used twice", pin)
		}
		seen[pin] = true
	}
	if st := b.SelfTest; st != nil {
		if seen[st.Pin] {
			return fmt.Errorf("selftest.pin: pin %d is a relay output", st.Pin)
		}
		if st.Pulses < 0 {
			return fmt.Errorf("selftest.pulses: %d is negative", st.Pulses)
		}
	}

	for name, r := range map[string]registry.Config{"thermo": b.Thermo, "presence": b.Presence} {
		if r.Capacity < 0 || r.Capacity > registry.MaxDevices {
			return fmt.Errorf("%s.capacity: %d out of range 0..%d", name, r.Capacity, registry.MaxDevices)
		}
	}

	if cfg.Serial.Baud < 0 {
		return fmt.Errorf("serial.baud: %d is negative", cfg.Serial.Baud)
	}
	if _, err := logrus.ParseLevel(cfg.Logger.Level); err != nil {
		return fmt.Errorf("logger.level: %w", err)
	}

	return validateSim(cfg.Sim, meters, b.SelfTest != nil)
}

func validateSim(sim SimConfig, meters int, selfTest bool) error {
	if sim.TickMs < 0 {
		return fmt.Errorf("sim.tick_ms: %d is negative", sim.TickMs)
	}
	for _, s := range sim.Thermo {
		addr, err := onewire.ParseAddress(s.Address)
		if err != nil {
			return fmt.Errorf("sim.thermo: address %q: %w", s.Address, err)
		}
		switch addr.Family() {
		case onewire.FamilyDS18B20, onewire.FamilyDS18S20:
		default:
			return fmt.Errorf("sim.thermo: address %q is not a temperature sensor", s.Address)
		}
	}
	for _, a := range sim.Presence {
		if _, err := onewire.ParseAddress(a); err != nil {
			return fmt.Errorf("sim.presence: address %q: %w", a, err)
		}
	}
	if len(sim.MeterPulseHz) > meters {
		return fmt.Errorf("sim.meter_pulse_hz: %d rates for %d meters", len(sim.MeterPulseHz), meters)
	}
	if m := sim.SelfTestMeter; m != nil {
		if !selfTest {
			return fmt.Errorf("sim.selftest_meter: board.selftest is not enabled")
		}
		if *m < 0 || *m >= meters {
			return fmt.Errorf("sim.selftest_meter: meter %d out of range 0..%d", *m, meters-1)
		}
	}
	for _, tok := range sim.Tokens {
		raw, err := hex.DecodeString(tok.Token)
		if err != nil {
			return fmt.Errorf("sim.tokens: token %q: %w", tok.Token, err)
		}
		if len(raw) == 0 || len(raw) > board.MaxTokenLen {
			return fmt.Errorf("sim.tokens: token %q must be 1..%d bytes", tok.Token, board.MaxTokenLen)
		}
		if tok.EveryMs <= 0 {
			return fmt.Errorf("sim.tokens: token %q needs every_ms > 0", tok.Token)
		}
	}
	return nil
}
