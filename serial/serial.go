package serial

import (
	"io"
)

// Port is the byte stream between the board and the host. kbsim opens a
// tty with tarm/serial; firmware builds wrap the link UART.
type Port interface {
	io.ReadWriteCloser

	// Flush drops inbound bytes the board has not read yet
	Flush() error
}

// DefaultBaud is the kegboard link speed
const DefaultBaud = 115200

// Config is the serial section of the kbsim configuration
type Config struct {
	// Host-facing tty; empty means trace frames instead of serving a host
	Device string `yaml:"device"`

	// Also reported to the host in the configuration message when it fits
	Baud int `yaml:"baud"`

	// ms a read waits for host commands; 0 blocks
	ReadTimeout int `yaml:"read_timeout_ms"`
}

// DefaultConfig returns the default kegboard link settings for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100,
	}
}
