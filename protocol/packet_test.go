package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketReset(t *testing.T) {
	p := NewPacket(MessageHello)
	assert.False(t, p.IsReset())

	require.NoError(t, p.AddUint16(HelloTagFirmwareVersion, FirmwareVersion))
	p.Reset()

	assert.True(t, p.IsReset())
	assert.Equal(t, uint16(0), p.Type())
	assert.Equal(t, 0, p.Len())

	// A type alone is enough to leave the reset state
	p.SetType(MessagePing)
	assert.False(t, p.IsReset())
}

func TestPacketAddTagLayout(t *testing.T) {
	p := NewPacket(MessageThermoReading)
	require.NoError(t, p.AddString(ThermoReadingTagName, "t0"))
	require.NoError(t, p.AddInt32(ThermoReadingTagReading, -10125000))

	expected := []byte{
		0x01, 0x03, 't', '0', 0x00,
		0x02, 0x04, 0x38, 0x81, 0x65, 0xFF,
	}
	assert.Equal(t, expected, p.Payload())
	assert.Equal(t, len(expected), p.Len())
}

func TestPacketSerializeLayout(t *testing.T) {
	p := NewPacket(MessageHello)
	require.NoError(t, p.AddTag(HelloTagFirmwareVersion, []byte{0x03, 0x00}))

	wire := p.Serialize(nil)

	require.Len(t, wire, FrameMin+4)
	assert.Equal(t, Prefix, string(wire[:PrefixLen]))
	assert.Equal(t, []byte{0x01, 0x00}, wire[8:10], "message type LE")
	assert.Equal(t, []byte{0x04, 0x00}, wire[10:12], "payload length LE")
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x00}, wire[12:16])
	assert.Equal(t, []byte{0x2e, 0x54}, wire[16:18], "checksum LE")
	assert.Equal(t, Trailer, string(wire[18:]))
}

func TestPacketChecksumMatchesWholeFrameCRC(t *testing.T) {
	p := NewPacket(MessageMeterStatus)
	require.NoError(t, p.AddString(MeterStatusTagName, "flow0"))
	require.NoError(t, p.AddUint32(MeterStatusTagReading, 1234))

	wire := p.Serialize(nil)
	body := wire[:len(wire)-FooterLen]

	// Seeding with PrefixCRC is the same as running the CRC over the prefix
	assert.Equal(t, CRC16(0, body), p.Checksum())
	assert.Equal(t, p.Checksum(), binary.LittleEndian.Uint16(wire[len(body):]))

	// Folding the transmitted checksum in leaves a zero residue
	assert.Equal(t, uint16(0), CRC16(0, wire[:len(wire)-TrailerLen]))
}

func TestPacketCapacityBoundary(t *testing.T) {
	p := NewPacket(MessageAuthToken)
	require.NoError(t, p.AddTag(0x01, make([]byte, 50)))
	require.NoError(t, p.AddTag(0x02, make([]byte, PayloadMax-52-RecordHeaderLen)))
	assert.Equal(t, PayloadMax, p.Len())
	assert.Equal(t, 0, p.Free())

	// Nothing more fits, not even an empty record or a raw byte
	assert.ErrorIs(t, p.AddTag(0x03, nil), ErrCapacityExceeded)
	assert.ErrorIs(t, p.AppendBytes([]byte{0x00}), ErrCapacityExceeded)
	assert.Equal(t, PayloadMax, p.Len())
}

func TestPacketCapacityNoPartialWrite(t *testing.T) {
	p := NewPacket(MessageAuthToken)
	require.NoError(t, p.AddTag(0x01, make([]byte, 50)))
	before := append([]byte(nil), p.Payload()...)

	// One byte of value more than the remaining room
	err := p.AddTag(0x02, bytes.Repeat([]byte{0xAA}, PayloadMax-52-RecordHeaderLen+1))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, before, p.Payload())

	err = p.AddString(0x02, string(bytes.Repeat([]byte{'x'}, PayloadMax)))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, before, p.Payload())

	err = p.AppendBytes(make([]byte, PayloadMax-52+1))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, before, p.Payload())
}

func TestPacketValueTooLong(t *testing.T) {
	p := NewPacket(MessageAuthToken)
	err := p.AddTag(0x01, make([]byte, 256))

	assert.ErrorIs(t, err, ErrValueTooLong)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.Equal(t, 0, p.Len())
}

func TestPacketBeginTagAppendBytes(t *testing.T) {
	p := NewPacket(MessageAuthToken)
	require.NoError(t, p.BeginTag(AuthTokenTagToken, 4))
	require.NoError(t, p.AppendBytes([]byte{0xde, 0xad}))
	require.NoError(t, p.AppendBytes([]byte{0xbe, 0xef}))

	f, err := p.Frame()
	require.NoError(t, err)
	v, ok := f.ReadTag(AuthTokenTagToken)
	require.True(t, ok)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, v)
}

func TestPacketFrameRejectsInconsistentRawAppend(t *testing.T) {
	p := NewPacket(MessageAuthToken)
	require.NoError(t, p.BeginTag(AuthTokenTagToken, 4))
	require.NoError(t, p.AppendBytes([]byte{0xde}))

	_, err := p.Frame()
	assert.ErrorIs(t, err, ErrRecordOverrun)
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestPacketWriteTo(t *testing.T) {
	p := NewPacket(MessagePing)
	var out bytes.Buffer

	n, err := p.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(FrameMin), n)
	assert.Equal(t, p.Serialize(nil), out.Bytes())
}
