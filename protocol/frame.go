package protocol

import (
	"encoding/binary"
	"errors"
)

// ErrTagNotFound is returned by the typed readers when a tag is absent
var ErrTagNotFound = errors.New("tag not found")

// Frame is a validated, read-only view of one KBSP message.
// A Frame is only produced by Parse or Packet.Frame, so every record
// boundary inside the payload has already been checked.
type Frame struct {
	msgType  uint16
	payload  [PayloadMax]byte
	n        int
	checksum uint16
}

// Parse decodes exactly one wire frame.
// It checks prefix, declared length, trailer, checksum and TLV structure
// before returning; on error no partially decoded frame is exposed.
func Parse(b []byte) (Frame, error) {
	if len(b) < PrefixLen {
		return Frame{}, ErrTruncated
	}
	if string(b[:PrefixLen]) != Prefix {
		return Frame{}, ErrBadPrefix
	}
	if len(b) < HeaderLen {
		return Frame{}, ErrTruncated
	}

	msgType := binary.LittleEndian.Uint16(b[PrefixLen:])
	length := int(binary.LittleEndian.Uint16(b[PrefixLen+TypeLen:]))
	if length > PayloadMax {
		return Frame{}, ErrLengthTooLong
	}

	total := FrameMin + length
	if len(b) < total {
		return Frame{}, ErrTruncated
	}
	if len(b) > total {
		return Frame{}, ErrLengthMismatch
	}

	payload := b[HeaderLen : HeaderLen+length]
	footer := b[HeaderLen+length:]
	if string(footer[ChecksumLen:]) != Trailer {
		return Frame{}, ErrBadTrailer
	}

	sent := binary.LittleEndian.Uint16(footer)
	if frameChecksum(msgType, payload) != sent {
		return Frame{}, ErrChecksumMismatch
	}
	if err := validateRecords(payload); err != nil {
		return Frame{}, err
	}

	f := Frame{msgType: msgType, checksum: sent}
	f.n = copy(f.payload[:], payload)
	return f, nil
}

// validateRecords walks the TLV stream and rejects any record that
// runs past the end of the payload.
func validateRecords(payload []byte) error {
	pos := 0
	for pos < len(payload) {
		if pos+RecordHeaderLen > len(payload) {
			return ErrRecordOverrun
		}
		next := pos + RecordHeaderLen + int(payload[pos+1])
		if next > len(payload) {
			return ErrRecordOverrun
		}
		pos = next
	}
	return nil
}

// Type returns the message type
func (f *Frame) Type() uint16 {
	return f.msgType
}

// Len returns the payload length
func (f *Frame) Len() int {
	return f.n
}

// Payload returns the payload bytes. The slice aliases the frame.
func (f *Frame) Payload() []byte {
	return f.payload[:f.n]
}

// Checksum returns the frame checksum
func (f *Frame) Checksum() uint16 {
	return f.checksum
}

// FindTag returns the payload offset of the first record carrying tag
func (f *Frame) FindTag(tag byte) (int, bool) {
	pos := 0
	for pos < f.n {
		if f.payload[pos] == tag {
			return pos, true
		}
		pos += RecordHeaderLen + int(f.payload[pos+1])
	}
	return 0, false
}

// value returns the value bytes of the first record carrying tag
func (f *Frame) value(tag byte) ([]byte, bool) {
	pos, ok := f.FindTag(tag)
	if !ok {
		return nil, false
	}
	length := int(f.payload[pos+1])
	start := pos + RecordHeaderLen
	return f.payload[start : start+length], true
}

// ReadTag returns a copy of the value bytes for tag
func (f *Frame) ReadTag(tag byte) ([]byte, bool) {
	v, ok := f.value(tag)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

// ReadTagByte returns the first value byte for tag
func (f *Frame) ReadTagByte(tag byte) (byte, bool) {
	v, ok := f.value(tag)
	if !ok || len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

// fixed returns the value for tag, requiring exactly size bytes
func (f *Frame) fixed(tag byte, size int) ([]byte, error) {
	v, ok := f.value(tag)
	if !ok {
		return nil, ErrTagNotFound
	}
	if len(v) != size {
		return nil, ErrFieldSize
	}
	return v, nil
}

// ReadUint8 decodes a one byte value
func (f *Frame) ReadUint8(tag byte) (uint8, error) {
	v, err := f.fixed(tag, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// ReadUint16 decodes a little-endian 16-bit value
func (f *Frame) ReadUint16(tag byte) (uint16, error) {
	v, err := f.fixed(tag, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v), nil
}

// ReadUint32 decodes a little-endian 32-bit value
func (f *Frame) ReadUint32(tag byte) (uint32, error) {
	v, err := f.fixed(tag, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v), nil
}

// ReadInt32 decodes a little-endian two's complement 32-bit value
func (f *Frame) ReadInt32(tag byte) (int32, error) {
	v, err := f.ReadUint32(tag)
	return int32(v), err
}

// ReadUint64 decodes a little-endian 64-bit value
func (f *Frame) ReadUint64(tag byte) (uint64, error) {
	v, err := f.fixed(tag, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(v), nil
}

// ReadString decodes a string value, dropping NUL padding
func (f *Frame) ReadString(tag byte) (string, error) {
	v, ok := f.value(tag)
	if !ok {
		return "", ErrTagNotFound
	}
	end := len(v)
	for end > 0 && v[end-1] == 0 {
		end--
	}
	return string(v[:end]), nil
}

// Tags calls fn for every record in order until fn returns false.
// value aliases the frame buffer.
func (f *Frame) Tags(fn func(tag byte, value []byte) bool) {
	pos := 0
	for pos < f.n {
		length := int(f.payload[pos+1])
		start := pos + RecordHeaderLen
		if !fn(f.payload[pos], f.payload[start:start+length]) {
			return
		}
		pos = start + length
	}
}
