package onewire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddr = Address{0x28, 0xff, 0x64, 0x1e, 0x0f, 0x00, 0x00, 0x34}

func TestCRC8(t *testing.T) {
	// Maxim application note 27 example ROM
	assert.Equal(t, byte(0xA2), CRC8([]byte{0x02, 0x1C, 0xB8, 0x01, 0x00, 0x00, 0x00}))
	assert.Equal(t, byte(0x34), CRC8(testAddr[:7]))
	assert.Equal(t, byte(0), CRC8(testAddr[:]), "CRC over data plus its CRC is zero")
	assert.Equal(t, byte(0), CRC8(nil))
}

func TestAddress(t *testing.T) {
	assert.Equal(t, FamilyDS18B20, testAddr.Family())
	assert.True(t, testAddr.Valid())
	assert.Equal(t, "28ff641e0f000034", testAddr.String())
	assert.Equal(t, uint64(0x3400000f1e64ff28), testAddr.Uint64())
	assert.False(t, testAddr.IsZero())
	assert.True(t, Address{}.IsZero())

	built := NewAddress(FamilyDS18B20, [6]byte{0xff, 0x64, 0x1e, 0x0f, 0x00, 0x00})
	assert.Equal(t, testAddr, built)

	broken := testAddr
	broken[3] ^= 0x01
	assert.False(t, broken.Valid())

	a, ok := AddressFromBytes(testAddr[:])
	assert.True(t, ok)
	assert.Equal(t, testAddr, a)
	_, ok = AddressFromBytes(testAddr[:7])
	assert.False(t, ok)
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("28ff641e0f000034")
	require.NoError(t, err)
	assert.Equal(t, testAddr, a)

	a, err = ParseAddress("28FF641E0F000034")
	require.NoError(t, err)
	assert.Equal(t, testAddr, a)

	for _, bad := range []string{"", "28ff641e0f0000", "28ff641e0f000035", "zzff641e0f000034"} {
		_, err := ParseAddress(bad)
		assert.ErrorIs(t, err, ErrBadAddress, bad)
	}
}

func readScratchpad(b *SimBus, addr Address) [ScratchpadLen]byte {
	var data [ScratchpadLen]byte
	b.Reset()
	b.Select(addr)
	b.Write(CmdReadScratchpad, false)
	for i := range data {
		data[i] = b.Read()
	}
	return data
}

func TestSimBusConversation(t *testing.T) {
	bus := NewSimBus()
	dev := bus.Attach(testAddr, 0x0191)

	require.True(t, bus.Reset())
	bus.Select(testAddr)
	bus.Write(CmdConvertT, true)
	assert.True(t, bus.LastPower)
	assert.Equal(t, 1, dev.Conversions)

	data := readScratchpad(bus, testAddr)
	assert.Equal(t, byte(0x91), data[0])
	assert.Equal(t, byte(0x01), data[1])
	assert.Equal(t, byte(0x70), data[8])
	assert.Equal(t, CRC8(data[:8]), data[8])
	assert.Equal(t, 1, dev.Fetches)

	// Reads past the scratchpad float high
	assert.Equal(t, byte(0xFF), bus.Read())
}

func TestSimBusFaults(t *testing.T) {
	bus := NewSimBus()
	dev := bus.Attach(testAddr, 0x0191)

	dev.CorruptCRC = true
	data := readScratchpad(bus, testAddr)
	assert.NotEqual(t, CRC8(data[:8]), data[8])

	dev.CorruptCRC = false
	dev.ReadZero = true
	assert.Equal(t, [ScratchpadLen]byte{}, readScratchpad(bus, testAddr))

	bus.SetPresent(testAddr, false)
	assert.False(t, bus.Reset())
	assert.Equal(t, byte(0xFF), readScratchpad(bus, testAddr)[0])
}

func TestSimBusSearch(t *testing.T) {
	bus := NewSimBus()
	other := NewAddress(FamilyDS18S20, [6]byte{1, 2, 3, 4, 5, 6})
	bus.Attach(testAddr, 0)
	bus.Attach(other, 0)

	found, err := bus.Search(nil)
	require.NoError(t, err)
	assert.Equal(t, []Address{testAddr, other}, found)

	bus.SetPresent(testAddr, false)
	found, err = bus.Search(found[:0])
	require.NoError(t, err)
	assert.Equal(t, []Address{other}, found)

	bus.SearchErr = errors.New("bus shorted")
	_, err = bus.Search(nil)
	assert.EqualError(t, err, "bus shorted")
}
