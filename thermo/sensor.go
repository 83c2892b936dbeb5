package thermo

import (
	"kegboard/core"
	"kegboard/onewire"
)

// State of a sensor's conversion cycle
type State uint8

const (
	StateUninitialized State = iota // not bound to a bus address
	StateIdle
	StateConverting
	StateReady // a reading was produced by the last Tick
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdle:
		return "idle"
	case StateConverting:
		return "converting"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Timing defaults in milliseconds
const (
	DefaultConversionWindow = 1000 // worst case 12-bit conversion time
	DefaultRefreshInterval  = 5000
)

// Config holds sensor timing. Zero fields take the defaults.
type Config struct {
	ConversionWindow uint32 `yaml:"conversion_window_ms"`
	RefreshInterval  uint32 `yaml:"refresh_interval_ms"`
}

// DefaultConfig returns the default timing
func DefaultConfig() Config {
	return Config{
		ConversionWindow: DefaultConversionWindow,
		RefreshInterval:  DefaultRefreshInterval,
	}
}

func (c Config) withDefaults() Config {
	if c.ConversionWindow == 0 {
		c.ConversionWindow = DefaultConversionWindow
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	return c
}

// Sensor runs the non-blocking conversion cycle of one DS18x20 device.
// Each Tick performs at most one bus transaction and never waits, so
// many sensors can share a single cooperative loop.
//
// Sensor is not safe for concurrent use; only the main loop touches it.
type Sensor struct {
	bus  onewire.Bus
	addr onewire.Address
	cfg  Config

	state      State
	startedAt  uint32
	nextPollAt uint32
	scheduled  bool // nextPollAt is set; otherwise poll on the next Tick

	last Reading
	err  error
}

// Bind attaches the sensor to a device and leaves it Idle, due for an
// immediate conversion
func (s *Sensor) Bind(bus onewire.Bus, addr onewire.Address, cfg Config) {
	s.bus = bus
	s.addr = addr
	s.cfg = cfg.withDefaults()
	s.state = StateUninitialized
	s.Reset()
}

// Reset abandons any conversion, invalidates the last value and makes the
// sensor due for polling
func (s *Sensor) Reset() {
	if s.bus != nil {
		s.state = StateIdle
	}
	s.startedAt = 0
	s.nextPollAt = 0
	s.scheduled = false
	s.last = Reading{Address: s.addr}
	s.err = nil
}

// Tick advances the conversion cycle. It returns the fetched reading and
// true on the call that completes a conversion, whether or not the
// reading passed validation.
func (s *Sensor) Tick(now uint32) (Reading, bool) {
	switch s.state {
	case StateUninitialized:
		return Reading{}, false
	case StateReady:
		s.state = StateIdle
	}

	switch s.state {
	case StateIdle:
		if s.scheduled && !core.Reached(now, s.nextPollAt) {
			return Reading{}, false
		}
		s.startConversion(now)
		return Reading{}, false

	case StateConverting:
		if now < s.startedAt {
			// Clock wrapped mid-conversion; restart the window
			s.startedAt = now
		}
		if core.Elapsed(now, s.startedAt) < s.cfg.ConversionWindow {
			return Reading{}, false
		}
		s.finishConversion(now)
		return s.last, true
	}
	return Reading{}, false
}

func (s *Sensor) startConversion(now uint32) {
	s.state = StateConverting
	s.startedAt = now
	core.RecordEvent(core.EvtConvertStart, s.addr[7], now, 0)

	if !s.bus.Reset() {
		// Nothing answered; the fetch will fail and mark the value invalid
		return
	}
	s.bus.Select(s.addr)
	s.bus.Write(onewire.CmdConvertT, true)
}

func (s *Sensor) finishConversion(now uint32) {
	s.state = StateReady
	s.nextPollAt = now + s.cfg.RefreshInterval
	s.scheduled = true

	r, err := s.fetch()
	r.Address = s.addr
	if err != nil {
		r = Reading{Address: s.addr, Raw: r.Raw}
		core.RecordEvent(core.EvtFetchInvalid, s.addr[7], now, 0)
		core.DebugPrintln("[THERMO] " + s.addr.String() + ": " + err.Error())
	} else {
		core.RecordEvent(core.EvtFetchValid, s.addr[7], now, uint32(r.MicroCelsius))
	}
	s.last = r
	s.err = err
}

func (s *Sensor) fetch() (Reading, error) {
	if !s.bus.Reset() {
		return Reading{}, ErrNoPresence
	}
	s.bus.Select(s.addr)
	s.bus.Write(onewire.CmdReadScratchpad, false)

	var data [onewire.ScratchpadLen]byte
	for i := range data {
		data[i] = s.bus.Read()
	}
	return DecodeScratchpad(s.addr.Family(), data)
}

// State returns the current cycle state
func (s *Sensor) State() State {
	return s.state
}

// Address returns the bound device address
func (s *Sensor) Address() onewire.Address {
	return s.addr
}

// Last returns the most recent reading. It is invalid until a fetch
// succeeds and again after any failed fetch.
func (s *Sensor) Last() Reading {
	return s.last
}

// Err returns the error of the last fetch, or nil
func (s *Sensor) Err() error {
	return s.err
}

// Busy reports whether a conversion is in flight
func (s *Sensor) Busy() bool {
	return s.state == StateConverting
}

// StartedAt returns when the current conversion began
func (s *Sensor) StartedAt() uint32 {
	return s.startedAt
}

// NextPollAt returns when the next conversion is due, and false if the
// sensor will poll on its next Tick
func (s *Sensor) NextPollAt() (uint32, bool) {
	return s.nextPollAt, s.scheduled
}
