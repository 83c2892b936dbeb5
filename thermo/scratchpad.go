package thermo

import (
	"math"

	"kegboard/onewire"
)

// Fixed-point scale from the raw register to micro degrees Celsius.
// DS18B20 counts 1/16 degree, DS18S20 1/2 degree.
const (
	ScaleDS18B20 = 1000000 / 16
	ScaleDS18S20 = 1000000 / 2
)

// Reading is one fetched temperature
type Reading struct {
	Address      onewire.Address
	Raw          int16 // temperature register as read
	MicroCelsius int32
	Valid        bool
}

// DecodeScratchpad validates a 9-byte scratchpad and scales its
// temperature register according to the device family
func DecodeScratchpad(family byte, data [onewire.ScratchpadLen]byte) (Reading, error) {
	if data == [onewire.ScratchpadLen]byte{} {
		return Reading{}, ErrNoData
	}
	if onewire.CRC8(data[:8]) != data[8] {
		return Reading{}, ErrBadCRC
	}

	raw := int16(uint16(data[1])<<8 | uint16(data[0]))

	var scale int64
	switch family {
	case onewire.FamilyDS18B20:
		scale = ScaleDS18B20
	case onewire.FamilyDS18S20:
		scale = ScaleDS18S20
	default:
		return Reading{Raw: raw}, ErrUnknownFamily
	}

	v := int64(raw) * scale
	if v > math.MaxInt32 || v < math.MinInt32 {
		return Reading{Raw: raw}, ErrOutOfRange
	}
	return Reading{Raw: raw, MicroCelsius: int32(v), Valid: true}, nil
}
