package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC16PrefixSeed(t *testing.T) {
	// The protocol seed is the running CRC of the prefix
	assert.Equal(t, uint16(PrefixCRC), CRC16(0, []byte(Prefix)))
}

func TestCRC16Empty(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), CRC16(0xFFFF, nil))
	assert.Equal(t, uint16(0), CRC16(0, []byte{}))
}

func TestCRC16Consistency(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}

	crc1 := CRC16(PrefixCRC, data)
	crc2 := CRC16(PrefixCRC, data)

	assert.Equal(t, crc1, crc2)
}

func TestCRC16Different(t *testing.T) {
	data1 := []byte{0x01, 0x02, 0x03}
	data2 := []byte{0x01, 0x02, 0x04}

	assert.NotEqual(t, CRC16(PrefixCRC, data1), CRC16(PrefixCRC, data2))
}

func TestFrameChecksumKnownValues(t *testing.T) {
	testCases := []struct {
		name     string
		msgType  uint16
		payload  []byte
		expected uint16
	}{
		{name: "ping", msgType: MessagePing, payload: nil, expected: 0xc7d4},
		{name: "hello", msgType: MessageHello, payload: []byte{0x01, 0x02, 0x03, 0x00}, expected: 0x542e},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, frameChecksum(tc.msgType, tc.payload))
		})
	}
}

func TestFrameChecksumSingleByteChange(t *testing.T) {
	payload := []byte{0x01, 0x04, 0xde, 0xad, 0xbe, 0xef}
	base := frameChecksum(MessageMeterStatus, payload)

	for i := range payload {
		for _, flip := range []byte{0x01, 0x10, 0x80, 0xFF} {
			mutated := append([]byte(nil), payload...)
			mutated[i] ^= flip
			assert.NotEqual(t, base, frameChecksum(MessageMeterStatus, mutated),
				"byte %d flipped by %#x", i, flip)
		}
	}
}
