// Package protocol implements the Kegboard Serial Protocol (KBSP v1)
package protocol

// Version represents the kegboard firmware version
const Version = "0.1.0"

// FirmwareVersion is reported in the hello message
const FirmwareVersion = 12

// ProtocolVersion is reported in the hello message
const ProtocolVersion = 1

// Frame layout constants
const (
	Prefix    = "KBSP v1:"
	PrefixCRC = 0xe3af // CRC16 of Prefix starting from zero
	Trailer   = "\r\n"

	PrefixLen     = 8
	TypeLen       = 2
	PayloadLenLen = 2
	HeaderLen     = PrefixLen + TypeLen + PayloadLenLen

	ChecksumLen = 2
	TrailerLen  = 2
	FooterLen   = ChecksumLen + TrailerLen

	PayloadMax = 112 // Maximum payload size
	FrameMin   = HeaderLen + FooterLen
	FrameMax   = FrameMin + PayloadMax

	// TLV record header: tag byte + length byte
	RecordHeaderLen = 2
	ValueMax        = 255
)
