//go:build tinygo

package serial

import "machine"

// UARTPort is a Port on a TinyGo hardware UART
type UARTPort struct {
	uart *machine.UART
}

// OpenUART configures uart for the kegboard link
func OpenUART(uart *machine.UART, baud int, tx, rx machine.Pin) (*UARTPort, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	err := uart.Configure(machine.UARTConfig{
		BaudRate: uint32(baud),
		TX:       tx,
		RX:       rx,
	})
	if err != nil {
		return nil, err
	}
	return &UARTPort{uart: uart}, nil
}

// Read returns buffered bytes without blocking
func (p *UARTPort) Read(b []byte) (int, error) {
	return p.uart.Read(b)
}

// Write sends encoded frames to the host
func (p *UARTPort) Write(b []byte) (int, error) {
	return p.uart.Write(b)
}

// Close is a no-op; the UART stays configured
func (p *UARTPort) Close() error {
	return nil
}

// Flush is a no-op; unread bytes stay in the UART ring buffer
func (p *UARTPort) Flush() error {
	return nil
}
