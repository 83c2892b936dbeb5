//go:build !tinygo

package serial

import (
	"errors"
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// NativePort serves the host over a tty opened with tarm/serial
type NativePort struct {
	port *serial.Port
	cfg  *Config
}

// Open opens the host link described by cfg
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("no serial config")
	}
	if cfg.Device == "" {
		return nil, errors.New("no serial device given")
	}

	baud := cfg.Baud
	if baud == 0 {
		baud = DefaultBaud
	}
	serialConfig := &serial.Config{
		Name:        cfg.Device,
		Baud:        baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	}

	port, err := serial.OpenPort(serialConfig)
	if err != nil {
		return nil, fmt.Errorf("open host link %s: %w", cfg.Device, err)
	}

	return &NativePort{
		port: port,
		cfg:  cfg,
	}, nil
}

// Read returns host command bytes, or 0 bytes after the read timeout
func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write sends encoded KBSP frames to the host
func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close releases the tty
func (p *NativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Flush discards data received but not yet read
func (p *NativePort) Flush() error {
	return p.port.Flush()
}
