// Package config loads the YAML configuration of the native simulator.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"kegboard/board"
	"kegboard/core"
	"kegboard/logging"
	"kegboard/registry"
	"kegboard/serial"
)

type Config struct {
	Board  BoardConfig    `yaml:"board"`
	Serial serial.Config  `yaml:"serial"`
	Logger logging.Config `yaml:"logger"`
	Sim    SimConfig      `yaml:"sim"`
}

// ---- BOARD ----

type BoardConfig struct {
	Name                  string          `yaml:"name"`
	Meters                *int            `yaml:"meters"` // nil takes the default, 0 disables meters
	OutputPins            []uint32        `yaml:"output_pins"`
	MeterUpdateIntervalMs uint32          `yaml:"meter_update_interval_ms"`
	RelayWatchdogMs       uint32          `yaml:"relay_watchdog_ms"`
	ScanIntervalMs        uint32          `yaml:"scan_interval_ms"`
	Thermo                registry.Config `yaml:"thermo"`
	Presence              registry.Config `yaml:"presence"`
	SelfTest              *SelfTestConfig `yaml:"selftest"`
}

// SelfTestConfig enables the test pulse train on one output pin
type SelfTestConfig struct {
	Pin        uint32 `yaml:"pin"`
	IntervalMs uint32 `yaml:"interval_ms"`
	Pulses     int    `yaml:"pulses"`
}

// MeterCount returns the configured number of meters
func (b *BoardConfig) MeterCount() int {
	if b.Meters == nil {
		return board.DefaultConfig().Meters
	}
	return *b.Meters
}

// ---- SIMULATION ----

type SimConfig struct {
	TickMs       int              `yaml:"tick_ms"`
	Thermo       []SimSensor      `yaml:"thermo"`
	Presence     []string         `yaml:"presence"`
	MeterPulseHz []int            `yaml:"meter_pulse_hz"`
	Tokens       []SimTokenConfig `yaml:"tokens"`

	// SelfTestMeter loops the selftest pin back into this meter
	SelfTestMeter *int `yaml:"selftest_meter"`
}

type SimSensor struct {
	Address string  `yaml:"address"`
	Celsius float64 `yaml:"celsius"`
}

type SimTokenConfig struct {
	Device  string `yaml:"device"`
	Token   string `yaml:"token"` // hex
	EveryMs int    `yaml:"every_ms"`
	HoldMs  int    `yaml:"hold_ms"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads, defaults and validates a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates YAML configuration
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	b := &cfg.Board
	def := board.DefaultConfig()
	if b.Name == "" {
		b.Name = def.Name
	}
	if b.Meters == nil {
		meters := def.Meters
		b.Meters = &meters
	}
	if b.OutputPins == nil {
		for _, pin := range def.OutputPins {
			b.OutputPins = append(b.OutputPins, uint32(pin))
		}
	}
	if b.MeterUpdateIntervalMs == 0 {
		b.MeterUpdateIntervalMs = def.MeterUpdateInterval
	}
	if b.RelayWatchdogMs == 0 {
		b.RelayWatchdogMs = def.RelayWatchdog
	}
	if b.ScanIntervalMs == 0 {
		b.ScanIntervalMs = def.ScanInterval
	}

	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = serial.DefaultBaud
	}

	logDef := logging.DefaultConfig()
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = logDef.Level
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = logDef.Format
	}
	if cfg.Logger.MaxSizeMB == 0 {
		cfg.Logger.MaxSizeMB = logDef.MaxSizeMB
	}
	if cfg.Logger.MaxBackups == 0 {
		cfg.Logger.MaxBackups = logDef.MaxBackups
	}
	if cfg.Logger.MaxAgeDays == 0 {
		cfg.Logger.MaxAgeDays = logDef.MaxAgeDays
	}

	if st := b.SelfTest; st != nil {
		if st.IntervalMs == 0 {
			st.IntervalMs = board.DefaultSelfTestInterval
		}
		if st.Pulses == 0 {
			st.Pulses = board.DefaultSelfTestPulses
		}
	}

	if cfg.Sim.TickMs == 0 {
		cfg.Sim.TickMs = 10
	}
}

// ToBoard converts the board section to a board.Config
func (c *Config) ToBoard() board.Config {
	pins := make([]core.GPIOPin, len(c.Board.OutputPins))
	for i, pin := range c.Board.OutputPins {
		pins[i] = core.GPIOPin(pin)
	}
	bc := board.Config{
		Name:                c.Board.Name,
		BaudRate:            uint32(c.Serial.Baud),
		Meters:              c.Board.MeterCount(),
		OutputPins:          pins,
		MeterUpdateInterval: c.Board.MeterUpdateIntervalMs,
		RelayWatchdog:       c.Board.RelayWatchdogMs,
		ScanInterval:        c.Board.ScanIntervalMs,
		Thermo:              c.Board.Thermo,
		Presence:            c.Board.Presence,
	}
	if st := c.Board.SelfTest; st != nil {
		bc.SelfTest = &board.SelfTestConfig{
			Pin:      core.GPIOPin(st.Pin),
			Interval: st.IntervalMs,
			Pulses:   st.Pulses,
		}
	}
	return bc
}
