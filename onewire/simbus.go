package onewire

import "sync"

// SimDevice is a temperature sensor attached to a SimBus
type SimDevice struct {
	Addr    Address
	Present bool
	Raw     int16 // temperature register, as the device reports it

	// Fault injection
	CorruptCRC bool // scratchpad CRC byte is wrong
	ReadZero   bool // scratchpad reads back as all zeros

	Conversions int // Convert T commands received
	Fetches     int // Read Scratchpad commands received
}

// Scratchpad returns the 9 bytes the device answers to Read Scratchpad
func (d *SimDevice) Scratchpad() [ScratchpadLen]byte {
	var data [ScratchpadLen]byte
	if d.ReadZero {
		return data
	}
	data[0] = byte(uint16(d.Raw))
	data[1] = byte(uint16(d.Raw) >> 8)
	data[2] = 0x4B // TH
	data[3] = 0x46 // TL
	data[4] = 0x7F // 12-bit resolution
	data[5] = 0xFF
	data[6] = 0x0C
	data[7] = 0x10
	data[8] = CRC8(data[:8])
	if d.CorruptCRC {
		data[8] ^= 0xFF
	}
	return data
}

// SimBus is an in-memory Bus used by the native simulator and tests.
// Devices answer Convert T and Read Scratchpad; an unanswered read
// returns 0xFF like a pulled-up line.
type SimBus struct {
	mu       sync.Mutex
	devices  []*SimDevice
	selected *SimDevice
	out      []byte

	SearchErr error // returned by the next Search calls while set
	Resets    int
	LastPower bool // power flag of the last Write
}

// NewSimBus creates an empty simulated bus
func NewSimBus() *SimBus {
	return &SimBus{}
}

// Attach adds a present device and returns it
func (b *SimBus) Attach(addr Address, raw int16) *SimDevice {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := &SimDevice{Addr: addr, Present: true, Raw: raw}
	b.devices = append(b.devices, d)
	return d
}

// Device returns the attached device with addr
func (b *SimBus) Device(addr Address) *SimDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.find(addr)
}

// SetPresent connects or disconnects a device
func (b *SimBus) SetPresent(addr Address, present bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d := b.find(addr); d != nil {
		d.Present = present
	}
}

// SetRaw changes a device's temperature register
func (b *SimBus) SetRaw(addr Address, raw int16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d := b.find(addr); d != nil {
		d.Raw = raw
	}
}

// Devices returns every attached device in attach order
func (b *SimBus) Devices() []*SimDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*SimDevice(nil), b.devices...)
}

func (b *SimBus) find(addr Address) *SimDevice {
	for _, d := range b.devices {
		if d.Addr == addr {
			return d
		}
	}
	return nil
}

func (b *SimBus) Reset() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Resets++
	b.selected = nil
	b.out = b.out[:0]
	for _, d := range b.devices {
		if d.Present {
			return true
		}
	}
	return false
}

func (b *SimBus) Select(addr Address) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.selected = nil
	if d := b.find(addr); d != nil && d.Present {
		b.selected = d
	}
}

func (b *SimBus) Write(v byte, power bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.LastPower = power
	d := b.selected
	if d == nil || !d.Present {
		return
	}
	switch v {
	case CmdConvertT:
		d.Conversions++
	case CmdReadScratchpad:
		d.Fetches++
		data := d.Scratchpad()
		b.out = append(b.out[:0], data[:]...)
	}
}

func (b *SimBus) Read() byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.out) == 0 || b.selected == nil || !b.selected.Present {
		return 0xFF
	}
	v := b.out[0]
	b.out = b.out[1:]
	return v
}

func (b *SimBus) Search(dst []Address) ([]Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.SearchErr != nil {
		return dst, b.SearchErr
	}
	for _, d := range b.devices {
		if d.Present {
			dst = append(dst, d.Addr)
		}
	}
	return dst, nil
}
