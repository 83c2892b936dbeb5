//go:build tinygo

package onewire

import (
	"machine"

	drv "tinygo.org/x/drivers/onewire"
)

// PinBus drives a bit-banged 1-Wire bus on one GPIO pin using the TinyGo
// driver. The driver has no strong pull-up control, so the power flag of
// Write is ignored; sensors must be externally powered.
type PinBus struct {
	dev drv.Device
}

// NewPinBus configures pin as a 1-Wire bus
func NewPinBus(pin machine.Pin) *PinBus {
	dev := drv.New(pin)
	dev.Configure(drv.Config{})
	return &PinBus{dev: dev}
}

func (b *PinBus) Reset() bool {
	return b.dev.Reset() == nil
}

func (b *PinBus) Select(addr Address) {
	// A missing device shows up later as a failed scratchpad CRC
	_ = b.dev.Select(addr[:])
}

func (b *PinBus) Write(v byte, power bool) {
	b.dev.Write(v)
}

func (b *PinBus) Read() byte {
	return b.dev.Read()
}

func (b *PinBus) Search(dst []Address) ([]Address, error) {
	if !b.Reset() {
		// An empty bus is not an error
		return dst, nil
	}
	roms, err := b.dev.Search(drv.SEARCH_ROM)
	if err != nil {
		return dst, err
	}
	for _, rom := range roms {
		if addr, ok := AddressFromBytes(rom); ok && addr.Valid() {
			dst = append(dst, addr)
		}
	}
	return dst, nil
}
