package onewire

import "errors"

// ROM and function commands
const (
	CmdSearchROM       = 0xF0
	CmdMatchROM        = 0x55
	CmdSkipROM         = 0xCC
	CmdConvertT        = 0x44
	CmdReadScratchpad  = 0xBE
	ScratchpadLen      = 9
	AddressLen         = 8
	FamilyDS18S20 byte = 0x10
	FamilyDS18B20 byte = 0x28
)

// ErrBadAddress is returned when parsing a malformed address
var ErrBadAddress = errors.New("onewire: bad address")

// Bus is an addressable 1-Wire style bus. Access is serialized by the
// caller; a Bus is never shared between goroutines or interrupt handlers.
type Bus interface {
	// Reset issues a bus reset and reports whether any device answered
	Reset() bool
	// Select addresses one device for the next function command
	Select(addr Address)
	// Write sends one byte. With power set, the bus is held high after
	// the byte for parasite powered conversions.
	Write(b byte, power bool)
	// Read receives one byte
	Read() byte
	// Search runs a ROM search, appending every address found to dst
	Search(dst []Address) ([]Address, error)
}

// Address is a 64-bit device ROM code. Byte 0 is the family code and
// byte 7 the CRC8 of bytes 0..6.
type Address [AddressLen]byte

// Family returns the family code
func (a Address) Family() byte {
	return a[0]
}

// Valid reports whether the ROM CRC matches
func (a Address) Valid() bool {
	return CRC8(a[:7]) == a[7]
}

// IsZero reports whether every byte is zero
func (a Address) IsZero() bool {
	return a == Address{}
}

// Uint64 returns the address as sent on the wire, byte 0 least significant
func (a Address) Uint64() uint64 {
	var v uint64
	for i := AddressLen - 1; i >= 0; i-- {
		v = v<<8 | uint64(a[i])
	}
	return v
}

// String returns the address as lower-case hex in bus order
func (a Address) String() string {
	const hexdigits = "0123456789abcdef"
	var buf [AddressLen * 2]byte
	for i, b := range a {
		buf[i*2] = hexdigits[b>>4]
		buf[i*2+1] = hexdigits[b&0x0F]
	}
	return string(buf[:])
}

// AddressFromBytes copies b into an Address; b must hold 8 bytes
func AddressFromBytes(b []byte) (Address, bool) {
	var a Address
	if len(b) != AddressLen {
		return a, false
	}
	copy(a[:], b)
	return a, true
}

// NewAddress builds an address from a family code and 6-byte serial,
// filling in the CRC byte
func NewAddress(family byte, serial [6]byte) Address {
	var a Address
	a[0] = family
	copy(a[1:7], serial[:])
	a[7] = CRC8(a[:7])
	return a
}

// ParseAddress parses the 16 hex digit form produced by String. The ROM
// CRC must match.
func ParseAddress(s string) (Address, error) {
	var a Address
	if len(s) != AddressLen*2 {
		return a, ErrBadAddress
	}
	for i := range a {
		hi, ok1 := fromHex(s[i*2])
		lo, ok2 := fromHex(s[i*2+1])
		if !ok1 || !ok2 {
			return Address{}, ErrBadAddress
		}
		a[i] = hi<<4 | lo
	}
	if !a.Valid() {
		return Address{}, ErrBadAddress
	}
	return a, nil
}

func fromHex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
