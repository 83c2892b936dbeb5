// Package sim drives simulated kegboard peripherals from configuration:
// sensors on in-memory 1-Wire buses, flow meter pulses and auth tokens.
package sim

import (
	"encoding/hex"
	"fmt"
	"math"

	"kegboard/board"
	"kegboard/config"
	"kegboard/core"
	"kegboard/onewire"
)

// Sim owns the simulated buses and the pulse and token sources
type Sim struct {
	Thermo   *onewire.SimBus
	Presence *onewire.SimBus

	meters  []meterSource
	tokens  []tokenSource
	last    uint32
	started bool
}

type meterSource struct {
	hz  uint32
	acc uint32 // pulse-milliseconds not yet emitted
}

type tokenSource struct {
	device    string
	token     []byte
	every     uint32
	hold      uint32
	next      uint32
	releaseAt uint32
	held      bool
}

// New builds the simulated peripherals described by cfg
func New(cfg config.SimConfig) (*Sim, error) {
	s := &Sim{
		Thermo:   onewire.NewSimBus(),
		Presence: onewire.NewSimBus(),
	}
	for _, sensor := range cfg.Thermo {
		addr, err := onewire.ParseAddress(sensor.Address)
		if err != nil {
			return nil, fmt.Errorf("thermo %q: %w", sensor.Address, err)
		}
		s.Thermo.Attach(addr, RawTemperature(addr.Family(), sensor.Celsius))
	}
	for _, a := range cfg.Presence {
		addr, err := onewire.ParseAddress(a)
		if err != nil {
			return nil, fmt.Errorf("presence %q: %w", a, err)
		}
		s.Presence.Attach(addr, 0)
	}
	for _, hz := range cfg.MeterPulseHz {
		if hz < 0 {
			return nil, fmt.Errorf("negative meter rate %d", hz)
		}
		s.meters = append(s.meters, meterSource{hz: uint32(hz)})
	}
	for _, tok := range cfg.Tokens {
		raw, err := hex.DecodeString(tok.Token)
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", tok.Token, err)
		}
		if tok.EveryMs <= 0 || tok.HoldMs < 0 {
			return nil, fmt.Errorf("token %q: bad timing", tok.Token)
		}
		s.tokens = append(s.tokens, tokenSource{
			device: tok.Device,
			token:  raw,
			every:  uint32(tok.EveryMs),
			hold:   uint32(tok.HoldMs),
		})
	}
	return s, nil
}

// RawTemperature converts degrees Celsius to the temperature register
// value a sensor of the given family reports
func RawTemperature(family byte, celsius float64) int16 {
	scale := 16.0
	if family == onewire.FamilyDS18S20 {
		scale = 2.0
	}
	v := math.Round(celsius * scale)
	if v > math.MaxInt16 {
		v = math.MaxInt16
	}
	if v < math.MinInt16 {
		v = math.MinInt16
	}
	return int16(v)
}

// SetTemperature changes a simulated sensor's reading
func (s *Sim) SetTemperature(addr onewire.Address, celsius float64) {
	s.Thermo.SetRaw(addr, RawTemperature(addr.Family(), celsius))
}

// Step advances the pulse and token sources to now and feeds b
func (s *Sim) Step(b *board.Board, now uint32) {
	if !s.started {
		s.started = true
		s.last = now
		for i := range s.tokens {
			s.tokens[i].next = now + s.tokens[i].every
		}
		return
	}
	dt := core.Elapsed(now, s.last)
	s.last = now

	for i := range s.meters {
		m := b.Meter(i)
		if m == nil {
			break
		}
		src := &s.meters[i]
		src.acc += src.hz * dt
		for ; src.acc >= 1000; src.acc -= 1000 {
			m.Pulse()
		}
	}

	for i := range s.tokens {
		t := &s.tokens[i]
		if t.held && core.Reached(now, t.releaseAt) {
			t.held = false
			b.PostAuthToken(t.device, t.token, board.TokenRemoved)
		}
		if !t.held && core.Reached(now, t.next) {
			b.PostAuthToken(t.device, t.token, board.TokenPresent)
			t.held = true
			t.releaseAt = now + t.hold
			t.next = now + t.every
			if t.hold == 0 {
				t.held = false
				b.PostAuthToken(t.device, t.token, board.TokenRemoved)
			}
		}
	}
}
