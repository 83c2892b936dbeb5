package protocol

import (
	"encoding/binary"
	"io"
)

// Packet builds an outgoing KBSP frame.
// The payload lives in a fixed buffer; appends that would not fit are
// rejected with ErrCapacityExceeded and leave the packet unchanged.
type Packet struct {
	msgType uint16
	payload [PayloadMax]byte
	n       int
}

// NewPacket creates an empty packet of the given message type
func NewPacket(msgType uint16) *Packet {
	return &Packet{msgType: msgType}
}

// Reset clears type and payload
func (p *Packet) Reset() {
	p.msgType = 0
	p.n = 0
}

// IsReset returns true if neither type nor payload has been set
func (p *Packet) IsReset() bool {
	return p.msgType == 0 && p.n == 0
}

// SetType sets the message type
func (p *Packet) SetType(msgType uint16) {
	p.msgType = msgType
}

// Type returns the message type
func (p *Packet) Type() uint16 {
	return p.msgType
}

// Len returns the encoded payload length
func (p *Packet) Len() int {
	return p.n
}

// Free returns the remaining payload capacity in bytes
func (p *Packet) Free() int {
	return PayloadMax - p.n
}

// Payload returns the encoded payload. The slice aliases the packet buffer.
func (p *Packet) Payload() []byte {
	return p.payload[:p.n]
}

// AddTag appends a TLV record
func (p *Packet) AddTag(tag byte, value []byte) error {
	if len(value) > ValueMax {
		return ErrValueTooLong
	}
	if p.n+RecordHeaderLen+len(value) > PayloadMax {
		return ErrCapacityExceeded
	}
	p.payload[p.n] = tag
	p.payload[p.n+1] = byte(len(value))
	p.n += RecordHeaderLen
	p.n += copy(p.payload[p.n:], value)
	return nil
}

// AppendBytes appends raw payload bytes.
// The caller is responsible for keeping the TLV structure consistent,
// typically after reserving a record with BeginTag.
func (p *Packet) AppendBytes(b []byte) error {
	if p.n+len(b) > PayloadMax {
		return ErrCapacityExceeded
	}
	p.n += copy(p.payload[p.n:], b)
	return nil
}

// BeginTag writes a record header announcing length value bytes, which
// must then be supplied with AppendBytes. The whole record must fit.
func (p *Packet) BeginTag(tag byte, length int) error {
	if length > ValueMax {
		return ErrValueTooLong
	}
	if p.n+RecordHeaderLen+length > PayloadMax {
		return ErrCapacityExceeded
	}
	p.payload[p.n] = tag
	p.payload[p.n+1] = byte(length)
	p.n += RecordHeaderLen
	return nil
}

// AddUint8 appends a one byte value
func (p *Packet) AddUint8(tag byte, v uint8) error {
	buf := [1]byte{v}
	return p.AddTag(tag, buf[:])
}

// AddUint16 appends a little-endian 16-bit value
func (p *Packet) AddUint16(tag byte, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return p.AddTag(tag, buf[:])
}

// AddUint32 appends a little-endian 32-bit value
func (p *Packet) AddUint32(tag byte, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return p.AddTag(tag, buf[:])
}

// AddInt32 appends a little-endian two's complement 32-bit value
func (p *Packet) AddInt32(tag byte, v int32) error {
	return p.AddUint32(tag, uint32(v))
}

// AddUint64 appends a little-endian 64-bit value
func (p *Packet) AddUint64(tag byte, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return p.AddTag(tag, buf[:])
}

// AddString appends s followed by a NUL terminator
func (p *Packet) AddString(tag byte, s string) error {
	length := len(s) + 1
	if err := p.BeginTag(tag, length); err != nil {
		return err
	}
	p.n += copy(p.payload[p.n:], s)
	p.payload[p.n] = 0
	p.n++
	return nil
}

// Checksum computes the frame checksum over type, length and payload
func (p *Packet) Checksum() uint16 {
	return frameChecksum(p.msgType, p.payload[:p.n])
}

// Serialize appends the complete wire frame to dst and returns the
// extended slice. The checksum is folded in while the bytes are written.
func (p *Packet) Serialize(dst []byte) []byte {
	dst = append(dst, Prefix...)

	crc := uint16(PrefixCRC)
	put := func(b byte) {
		dst = append(dst, b)
		crc = CRC16Update(crc, b)
	}

	put(uint8(p.msgType & 0xFF))
	put(uint8(p.msgType >> 8))
	put(uint8(p.n & 0xFF))
	put(uint8(p.n >> 8))
	for _, b := range p.payload[:p.n] {
		put(b)
	}

	dst = append(dst, uint8(crc&0xFF), uint8(crc>>8))
	return append(dst, Trailer...)
}

// WriteTo writes the serialized frame to w in a single Write call
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	var buf [FrameMax]byte
	n, err := w.Write(p.Serialize(buf[:0]))
	return int64(n), err
}

// Frame returns a validated read-only view of the packet contents.
// It fails only if raw appends left the TLV structure inconsistent.
func (p *Packet) Frame() (Frame, error) {
	var f Frame
	f.msgType = p.msgType
	f.n = copy(f.payload[:], p.payload[:p.n])
	f.checksum = p.Checksum()
	if err := validateRecords(f.payload[:f.n]); err != nil {
		return Frame{}, err
	}
	return f, nil
}
