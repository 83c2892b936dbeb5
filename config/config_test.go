package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kegboard/board"
	"kegboard/core"
	"kegboard/registry"
	"kegboard/serial"
)

const sample = `
board:
  name: cellar
  meters: 4
  output_pins: [4, 5, 6]
  relay_watchdog_ms: 5000
  thermo:
    capacity: 4
    eviction_threshold: 2
    sensor:
      conversion_window_ms: 750
serial:
  device: /dev/ttyUSB1
logger:
  level: debug
  format: json
sim:
  tick_ms: 5
  thermo:
    - address: 28ff641e0f000034
      celsius: 4.5
  presence:
    - 28ff641e0f000034
  meter_pulse_hz: [20, 0]
  tokens:
    - device: core.rfid
      token: "0102030405"
      every_ms: 30000
      hold_ms: 2000
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "cellar", cfg.Board.Name)
	require.NotNil(t, cfg.Board.Meters)
	assert.Equal(t, 4, *cfg.Board.Meters)
	assert.Equal(t, uint8(2), cfg.Board.Thermo.EvictionThreshold)
	assert.Equal(t, uint32(750), cfg.Board.Thermo.Sensor.ConversionWindow)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Device)
	assert.Equal(t, 115200, cfg.Serial.Baud)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 5, cfg.Sim.TickMs)
	require.Len(t, cfg.Sim.Thermo, 1)
	assert.Equal(t, 4.5, cfg.Sim.Thermo[0].Celsius)
	require.Len(t, cfg.Sim.Tokens, 1)
	assert.Equal(t, 2000, cfg.Sim.Tokens[0].HoldMs)

	bc := cfg.ToBoard()
	assert.Equal(t, []core.GPIOPin{4, 5, 6}, bc.OutputPins)
	assert.Equal(t, uint32(5000), bc.RelayWatchdog)
	assert.Equal(t, uint32(board.DefaultMeterUpdateInterval), bc.MeterUpdateInterval)
	assert.Equal(t, uint32(board.DefaultScanInterval), bc.ScanInterval)
	assert.Equal(t, registry.Config{Capacity: 4, EvictionThreshold: 2, Sensor: bc.Thermo.Sensor}, bc.Thermo)
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	bc := cfg.ToBoard()
	def := board.DefaultConfig()
	assert.Equal(t, def.Name, bc.Name)
	assert.Equal(t, def.Meters, bc.Meters)
	assert.Equal(t, uint32(serial.DefaultBaud), bc.BaudRate)
	assert.Nil(t, bc.SelfTest)
	assert.Equal(t, def.OutputPins, bc.OutputPins)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 10, cfg.Sim.TickMs)
}

func TestExplicitNoOutputs(t *testing.T) {
	cfg, err := Parse([]byte("board:\n  output_pins: []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.ToBoard().OutputPins)
}

func TestExplicitNoMeters(t *testing.T) {
	cfg, err := Parse([]byte("board:\n  meters: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.ToBoard().Meters)

	_, err = Parse([]byte("board:\n  meters: 0\nsim:\n  meter_pulse_hz: [5]\n"))
	assert.Error(t, err, "no meters to pulse")
}

func TestSelfTest(t *testing.T) {
	cfg, err := Parse([]byte("board:\n  selftest:\n    pin: 9\nsim:\n  selftest_meter: 1\n"))
	require.NoError(t, err)

	bc := cfg.ToBoard()
	require.NotNil(t, bc.SelfTest)
	assert.Equal(t, core.GPIOPin(9), bc.SelfTest.Pin)
	assert.Equal(t, uint32(board.DefaultSelfTestInterval), bc.SelfTest.Interval)
	assert.Equal(t, board.DefaultSelfTestPulses, bc.SelfTest.Pulses)
	require.NotNil(t, cfg.Sim.SelfTestMeter)
	assert.Equal(t, 1, *cfg.Sim.SelfTestMeter)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kbsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cellar", cfg.Board.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "board: ["},
		{"long name", "board:\n  name: kegboard-two\n"},
		{"non ascii name", "board:\n  name: \"kég\"\n"},
		{"too many meters", "board:\n  meters: 7\n"},
		{"too many outputs", "board:\n  output_pins: [1, 2, 3, 4, 5, 6, 7]\n"},
		{"duplicate pin", "board:\n  output_pins: [4, 4]\n"},
		{"registry too big", "board:\n  thermo:\n    capacity: 9\n"},
		{"bad level", "logger:\n  level: chatty\n"},
		{"bad sensor address", "sim:\n  thermo:\n    - address: 28ff641e0f000035\n"},
		{"not a sensor", "sim:\n  thermo:\n    - address: 01aabbcc000000ba\n"},
		{"bad presence address", "sim:\n  presence: [nope]\n"},
		{"negative meters", "board:\n  meters: -1\n"},
		{"selftest on relay pin", "board:\n  output_pins: [4, 5]\n  selftest:\n    pin: 5\n"},
		{"loopback without selftest", "sim:\n  selftest_meter: 0\n"},
		{"loopback meter missing", "board:\n  meters: 1\n  selftest:\n    pin: 9\nsim:\n  selftest_meter: 1\n"},
		{"too many meter rates", "board:\n  meters: 1\nsim:\n  meter_pulse_hz: [1, 2]\n"},
		{"bad token", "sim:\n  tokens:\n    - token: xyz\n      every_ms: 10\n"},
		{"token without period", "sim:\n  tokens:\n    - token: \"01\"\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}
