package protocol

import "errors"

var (
	// ErrCapacityExceeded is returned when an append would overflow the payload
	ErrCapacityExceeded = errors.New("payload capacity exceeded")

	// ErrChecksumMismatch is returned when a received frame fails its checksum
	ErrChecksumMismatch = errors.New("frame checksum mismatch")

	// ErrMalformedFrame is returned for framing and TLV structure errors
	ErrMalformedFrame = errors.New("malformed frame")
)

// Detailed causes. Each one matches its category with errors.Is.
var (
	ErrValueTooLong   = newFrameError(ErrCapacityExceeded, "tag value longer than 255 bytes")
	ErrBadPrefix      = newFrameError(ErrMalformedFrame, "bad frame prefix")
	ErrTruncated      = newFrameError(ErrMalformedFrame, "truncated frame")
	ErrLengthTooLong  = newFrameError(ErrMalformedFrame, "payload length exceeds maximum")
	ErrLengthMismatch = newFrameError(ErrMalformedFrame, "payload length does not match frame size")
	ErrBadTrailer     = newFrameError(ErrMalformedFrame, "bad frame trailer")
	ErrRecordOverrun  = newFrameError(ErrMalformedFrame, "tag record runs past payload")
	ErrFieldSize      = newFrameError(ErrMalformedFrame, "tag value has unexpected size")
)

type frameError struct {
	kind error
	msg  string
}

func newFrameError(kind error, msg string) error {
	return &frameError{kind: kind, msg: msg}
}

func (e *frameError) Error() string {
	return e.kind.Error() + ": " + e.msg
}

func (e *frameError) Unwrap() error {
	return e.kind
}
