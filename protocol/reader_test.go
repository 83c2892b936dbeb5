package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collected struct {
	types  []uint16
	errors []error
}

func (c *collected) handle(f *Frame) error {
	c.types = append(c.types, f.Type())
	return nil
}

func setOutputFrame(t *testing.T, id, mode uint8) []byte {
	t.Helper()
	p := NewPacket(MessageSetOutput)
	require.NoError(t, p.AddUint8(SetOutputTagOutputID, id))
	require.NoError(t, p.AddUint8(SetOutputTagOutputMode, mode))
	return p.Serialize(nil)
}

func TestReaderBackToBackFrames(t *testing.T) {
	var stream []byte
	stream = append(stream, NewPacket(MessagePing).Serialize(nil)...)
	stream = append(stream, setOutputFrame(t, 1, OutputEnabled)...)

	r := NewReader()
	var got collected
	in := NewSliceInputBuffer(stream)
	r.Receive(in, got.handle)

	assert.Equal(t, []uint16{MessagePing, MessageSetOutput}, got.types)
	assert.Equal(t, 0, in.Available())
	assert.Equal(t, uint32(2), r.Stats().Frames)
	assert.Equal(t, uint32(0), r.Stats().Resyncs)
}

func TestReaderResyncsAfterGarbage(t *testing.T) {
	stream := []byte("noise\x00KBS")
	stream = append(stream, NewPacket(MessagePing).Serialize(nil)...)

	r := NewReader()
	var got collected
	r.SetErrorHandler(func(err error) { got.errors = append(got.errors, err) })
	r.Receive(NewSliceInputBuffer(stream), got.handle)

	assert.Equal(t, []uint16{MessagePing}, got.types)
	assert.NotZero(t, r.Stats().Resyncs)
	assert.Empty(t, got.errors)
}

func TestReaderWaitsForPartialFrame(t *testing.T) {
	wire := setOutputFrame(t, 2, OutputDisabled)
	fifo := NewFifoBuffer(256)
	r := NewReader()
	var got collected

	// Feed one byte at a time; nothing is delivered until the last byte
	for i, b := range wire {
		fifo.Write([]byte{b})
		r.Receive(fifo, got.handle)
		if i < len(wire)-1 {
			assert.Empty(t, got.types, "delivered early at byte %d", i)
		}
	}

	assert.Equal(t, []uint16{MessageSetOutput}, got.types)
	assert.True(t, fifo.IsEmpty())
}

func TestReaderDropsCorruptFrames(t *testing.T) {
	corrupt := setOutputFrame(t, 1, OutputEnabled)
	corrupt[HeaderLen+2] ^= 0xFF

	bogusLength := []byte(Prefix)
	bogusLength = append(bogusLength, 0x84, 0x00, 0xFF, 0x00)

	var stream []byte
	stream = append(stream, corrupt...)
	stream = append(stream, bogusLength...)
	stream = append(stream, NewPacket(MessagePing).Serialize(nil)...)

	r := NewReader()
	var got collected
	r.SetErrorHandler(func(err error) { got.errors = append(got.errors, err) })
	in := NewSliceInputBuffer(stream)
	r.Receive(in, got.handle)

	assert.Equal(t, []uint16{MessagePing}, got.types)
	assert.Equal(t, 0, in.Available())

	stats := r.Stats()
	assert.Equal(t, uint32(1), stats.BadChecksum)
	assert.Equal(t, uint32(1), stats.Malformed)
	require.Len(t, got.errors, 2)
	assert.ErrorIs(t, got.errors[0], ErrChecksumMismatch)
	assert.ErrorIs(t, got.errors[1], ErrLengthTooLong)
}

func TestReaderHandlerErrorsAreCounted(t *testing.T) {
	r := NewReader()
	failure := errors.New("handler failed")
	var reported []error
	r.SetErrorHandler(func(err error) { reported = append(reported, err) })

	r.Receive(NewSliceInputBuffer(NewPacket(MessagePing).Serialize(nil)), func(f *Frame) error {
		return failure
	})

	assert.Equal(t, uint32(1), r.Stats().HandlerErrors)
	assert.Equal(t, []error{failure}, reported)
}

func TestReaderKeepsPartialPrefixAtTail(t *testing.T) {
	in := NewSliceInputBuffer([]byte("xxKBSP v"))
	r := NewReader()
	r.Receive(in, nil)

	assert.Equal(t, []byte("KBSP v"), in.Data())
}

func TestFindPrefix(t *testing.T) {
	assert.Equal(t, 0, findPrefix([]byte(Prefix)))
	assert.Equal(t, 3, findPrefix([]byte("abcKBSP v1:")))
	assert.Equal(t, 2, findPrefix([]byte("abKB")))
	assert.Equal(t, 6, findPrefix([]byte("KBSP x")))
	assert.Equal(t, 0, findPrefix(nil))
}
