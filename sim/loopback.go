package sim

import (
	"kegboard/board"
	"kegboard/core"
)

// Loopback is a GPIO driver with a jumper from one output pin to a meter
// input: every rising edge on the pin counts as a meter pulse.
type Loopback struct {
	*core.MemoryGPIO
	pin   core.GPIOPin
	meter *board.Meter
}

// NewLoopback wires pin to nothing until Connect is called
func NewLoopback(gpio *core.MemoryGPIO, pin core.GPIOPin) *Loopback {
	return &Loopback{MemoryGPIO: gpio, pin: pin}
}

// Connect routes edges to m
func (l *Loopback) Connect(m *board.Meter) {
	l.meter = m
}

func (l *Loopback) SetPin(pin core.GPIOPin, value bool) error {
	prev, _ := l.MemoryGPIO.GetPin(pin)
	if err := l.MemoryGPIO.SetPin(pin, value); err != nil {
		return err
	}
	if pin == l.pin && value && !prev && l.meter != nil {
		l.meter.Pulse()
	}
	return nil
}
