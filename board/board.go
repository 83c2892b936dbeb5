// Package board runs the kegboard main loop: it polls flow meters,
// temperature sensors and the presence bus, drives relay outputs, and
// reports every change to the host as KBSP frames.
package board

import (
	"errors"
	"io"

	"kegboard/core"
	"kegboard/onewire"
	"kegboard/protocol"
	"kegboard/registry"
)

const (
	MaxMeters  = 6
	MaxOutputs = 6

	DefaultName                = "kegboard"
	DefaultMeterUpdateInterval = 100   // ms between meter status reports
	DefaultRelayWatchdog       = 10000 // ms a relay stays on without a refresh
	DefaultScanInterval        = 1000  // ms between bus searches
	DefaultBaudRate            = 115200

	inputBufferSize = 256
)

var (
	ErrTooManyMeters  = errors.New("too many meters")
	ErrTooManyOutputs = errors.New("too many outputs")
	ErrNoOutput       = errors.New("no such output")
	ErrNoClock        = errors.New("no clock")
)

// Config describes the board's peripherals and timing
type Config struct {
	Name                string
	BaudRate            uint32 // reported in the configuration message
	Meters              int
	OutputPins          []core.GPIOPin
	MeterUpdateInterval uint32
	RelayWatchdog       uint32
	ScanInterval        uint32
	Thermo              registry.Config
	Presence            registry.Config
	SelfTest            *SelfTestConfig // nil disables the test pulse train
}

// DefaultConfig returns the two-meter, two-relay layout of the stock board
func DefaultConfig() Config {
	return Config{
		Name:                DefaultName,
		BaudRate:            DefaultBaudRate,
		Meters:              2,
		OutputPins:          []core.GPIOPin{4, 5},
		MeterUpdateInterval: DefaultMeterUpdateInterval,
		RelayWatchdog:       DefaultRelayWatchdog,
		ScanInterval:        DefaultScanInterval,
	}
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.MeterUpdateInterval == 0 {
		c.MeterUpdateInterval = DefaultMeterUpdateInterval
	}
	if c.RelayWatchdog == 0 {
		c.RelayWatchdog = DefaultRelayWatchdog
	}
	if c.ScanInterval == 0 {
		c.ScanInterval = DefaultScanInterval
	}
	return c
}

// Deps are the collaborators the board talks to. Nil buses disable the
// matching feature; a nil GPIO driver falls back to core.MustGPIO.
type Deps struct {
	Clock       core.Clock
	Out         io.Writer
	ThermoBus   onewire.Bus
	PresenceBus onewire.Bus
	GPIO        core.GPIODriver
}

// Stats are cumulative board counters
type Stats struct {
	Sent           uint32 // frames queued for the host
	EmitFailed     uint32 // frames that could not be built or queued
	WriteErrors    uint32 // serial writes that failed
	CommandErrors  uint32 // inbound commands that failed
	InputOverflow  uint32 // inbound bytes dropped for lack of buffer
	ScanErrors     uint32 // bus searches that failed
	SelfTestTrains uint32 // selftest pulse trains driven
}

// Board is the cooperative main loop. All methods except Meter(i).Pulse
// and PostAuthToken must be called from the loop goroutine.
type Board struct {
	cfg   Config
	clock core.Clock
	out   io.Writer
	gpio  core.GPIODriver

	sched    *core.Scheduler
	commands *core.CommandRegistry
	reader   *protocol.Reader
	input    *protocol.FifoBuffer
	output   *protocol.ScratchOutput
	pkt      protocol.Packet

	meters     [MaxMeters]Meter
	numMeters  int
	meterTimer core.Timer

	outputs    [MaxOutputs]Output
	numOutputs int

	thermo      *registry.Registry
	thermoNames [registry.MaxDevices]string
	presence    *registry.Registry
	scanTimer   core.Timer

	selfTest      SelfTestConfig
	selfTestTimer core.Timer

	tokens core.EventQueue[AuthToken]

	stats Stats
}

// New creates a board. Nothing touches the hardware until Start.
func New(cfg Config, deps Deps) (*Board, error) {
	cfg = cfg.withDefaults()
	if cfg.Meters < 0 || cfg.Meters > MaxMeters {
		return nil, ErrTooManyMeters
	}
	if len(cfg.OutputPins) > MaxOutputs {
		return nil, ErrTooManyOutputs
	}
	if deps.Clock == nil {
		return nil, ErrNoClock
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}

	b := &Board{
		cfg:        cfg,
		clock:      deps.Clock,
		out:        deps.Out,
		gpio:       deps.GPIO,
		sched:      core.NewScheduler(),
		commands:   core.NewCommandRegistry(),
		reader:     protocol.NewReader(),
		input:      protocol.NewFifoBuffer(inputBufferSize),
		output:     protocol.NewScratchOutput(),
		numMeters:  cfg.Meters,
		numOutputs: len(cfg.OutputPins),
	}

	for i := 0; i < b.numMeters; i++ {
		b.meters[i].name = "flow" + core.Itoa(i)
	}
	for i := 0; i < b.numOutputs; i++ {
		o := &b.outputs[i]
		o.name = "output" + core.Itoa(i)
		o.pin = cfg.OutputPins[i]
		o.index = i
		o.watchdog.Handler = b.relayWatchdog(i)
	}
	if cfg.SelfTest != nil {
		b.selfTest = cfg.SelfTest.withDefaults()
		b.selfTestTimer.Handler = b.selfTestPulse
	}
	if (b.numOutputs > 0 || cfg.SelfTest != nil) && b.gpio == nil {
		b.gpio = core.MustGPIO()
	}

	if deps.ThermoBus != nil {
		b.thermo = registry.New(deps.ThermoBus, cfg.Thermo)
	}
	if deps.PresenceBus != nil {
		b.presence = registry.New(deps.PresenceBus, cfg.Presence)
	}

	b.meterTimer.Handler = b.meterUpdate
	b.scanTimer.Handler = b.scanBuses

	b.reader.SetErrorHandler(b.frameError)
	b.registerCommands()
	return b, nil
}

// Start configures the outputs, arms the periodic timers and greets the
// host with hello and configuration. The first bus scan runs on the first
// Tick.
func (b *Board) Start() error {
	for i := 0; i < b.numOutputs; i++ {
		o := &b.outputs[i]
		if err := b.gpio.ConfigureOutput(o.pin); err != nil {
			return err
		}
		if err := b.gpio.SetPin(o.pin, false); err != nil {
			return err
		}
	}

	if b.cfg.SelfTest != nil {
		if err := b.gpio.ConfigureOutput(b.selfTest.Pin); err != nil {
			return err
		}
	}

	now := b.clock.Now()
	if b.cfg.SelfTest != nil {
		b.selfTestTimer.WakeTime = now + b.selfTest.Interval
		b.sched.ScheduleTimer(&b.selfTestTimer)
	}
	if b.numMeters > 0 {
		b.meterTimer.WakeTime = now + b.cfg.MeterUpdateInterval
		b.sched.ScheduleTimer(&b.meterTimer)
	}
	if b.thermo != nil || b.presence != nil {
		b.scanTimer.WakeTime = now
		b.sched.ScheduleTimer(&b.scanTimer)
	}

	b.sendHello()
	b.sendConfiguration()
	return b.Flush()
}

// Tick runs one loop iteration: due timers, one Tick per thermo sensor,
// and any queued auth tokens. Output is flushed before returning.
func (b *Board) Tick() error {
	now := b.clock.Now()
	b.sched.Dispatch(now)

	if b.thermo != nil {
		b.thermo.Each(func(h registry.Handle, e *registry.Entry) bool {
			r, ok := e.Sensor.Tick(now)
			if ok && e.Present && r.Valid {
				b.sendThermo(h, r.MicroCelsius)
			}
			return true
		})
	}

	b.drainAuthTokens()
	return b.Flush()
}

// Flush writes queued frames to the serial port. Frames are dropped if
// the write fails.
func (b *Board) Flush() error {
	data := b.output.Result()
	if len(data) == 0 {
		return nil
	}
	_, err := b.out.Write(data)
	b.output.Reset()
	if err != nil {
		b.stats.WriteErrors++
		return err
	}
	return nil
}

// Meter returns meter i, or nil
func (b *Board) Meter(i int) *Meter {
	if i < 0 || i >= b.numMeters {
		return nil
	}
	return &b.meters[i]
}

// Output returns relay output i, or nil
func (b *Board) Output(i int) *Output {
	if i < 0 || i >= b.numOutputs {
		return nil
	}
	return &b.outputs[i]
}

// ThermoRegistry returns the temperature bus registry, or nil
func (b *Board) ThermoRegistry() *registry.Registry {
	return b.thermo
}

// PresenceRegistry returns the presence bus registry, or nil
func (b *Board) PresenceRegistry() *registry.Registry {
	return b.presence
}

// Config returns the effective configuration
func (b *Board) Config() Config {
	return b.cfg
}

// Stats returns the board counters
func (b *Board) Stats() Stats {
	return b.stats
}

// ReaderStats returns the inbound frame counters
func (b *Board) ReaderStats() protocol.ReaderStats {
	return b.reader.Stats()
}
