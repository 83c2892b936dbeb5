package thermo

import "errors"

// ErrDeviceReadInvalid is returned when a fetched conversion fails validation
var ErrDeviceReadInvalid = errors.New("device read invalid")

// Detailed causes, all matching ErrDeviceReadInvalid with errors.Is
var (
	ErrNoPresence    = newReadError("no presence pulse")
	ErrBadCRC        = newReadError("scratchpad CRC mismatch")
	ErrNoData        = newReadError("scratchpad reads all zero")
	ErrUnknownFamily = newReadError("unknown device family")
	ErrOutOfRange    = newReadError("temperature out of range")
)

type readError struct {
	msg string
}

func newReadError(msg string) error {
	return &readError{msg: msg}
}

func (e *readError) Error() string {
	return ErrDeviceReadInvalid.Error() + ": " + e.msg
}

func (e *readError) Unwrap() error {
	return ErrDeviceReadInvalid
}
