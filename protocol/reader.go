package protocol

import "encoding/binary"

// FrameHandler is called for every valid frame pulled off the stream.
// The frame is only valid for the duration of the call.
type FrameHandler func(f *Frame) error

// ErrorHandler is told about every dropped frame or failed handler
type ErrorHandler func(err error)

// ReaderStats counts receive-path events
type ReaderStats struct {
	Frames        uint32 // valid frames delivered
	Resyncs       uint32 // times garbage was skipped to find a prefix
	Malformed     uint32 // frames dropped for framing errors
	BadChecksum   uint32 // frames dropped for checksum mismatch
	HandlerErrors uint32 // handler returned an error
}

// Reader extracts KBSP frames from a serial byte stream.
// It re-aligns on the prefix after noise and never trusts a length that
// has not been bounds-checked, so truncated or corrupt input is dropped
// rather than read past.
type Reader struct {
	stats   ReaderStats
	onError ErrorHandler
}

// NewReader creates a new Reader
func NewReader() *Reader {
	return &Reader{}
}

// SetErrorHandler sets a callback for dropped frames and handler errors
func (r *Reader) SetErrorHandler(fn ErrorHandler) {
	r.onError = fn
}

// Stats returns a snapshot of the receive counters
func (r *Reader) Stats() ReaderStats {
	return r.stats
}

// Receive processes incoming data from the input buffer.
// Complete frames are consumed; a trailing partial frame is left in the
// buffer for the next call.
func (r *Reader) Receive(input InputBuffer, handle FrameHandler) {
	data := input.Data()

	for len(data) > 0 {
		// Skip anything that cannot be the start of a frame
		start := findPrefix(data)
		if start > 0 {
			r.stats.Resyncs++
			data = data[start:]
		}

		// Wait for the full header
		if len(data) < HeaderLen {
			break
		}

		length := int(binary.LittleEndian.Uint16(data[PrefixLen+TypeLen:]))
		if length > PayloadMax {
			r.drop(ErrLengthTooLong)
			data = data[1:]
			continue
		}

		// Wait for the full frame
		total := FrameMin + length
		if len(data) < total {
			break
		}

		f, err := Parse(data[:total])
		if err != nil {
			r.drop(err)
			data = data[1:]
			continue
		}
		data = data[total:]
		r.stats.Frames++

		if handle != nil {
			if err := handle(&f); err != nil {
				r.stats.HandlerErrors++
				r.report(err)
			}
		}
	}

	// Remove consumed bytes from input
	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

func (r *Reader) drop(err error) {
	if err == ErrChecksumMismatch {
		r.stats.BadChecksum++
	} else {
		r.stats.Malformed++
	}
	r.report(err)
}

func (r *Reader) report(err error) {
	if r.onError != nil {
		r.onError(err)
	}
}

// findPrefix returns the offset of the first full prefix in data, or of a
// partial prefix running into the end of data. It returns len(data) when
// neither exists.
func findPrefix(data []byte) int {
	for i := range data {
		if data[i] != Prefix[0] {
			continue
		}
		n := len(data) - i
		if n > PrefixLen {
			n = PrefixLen
		}
		if string(data[i:i+n]) == Prefix[:n] {
			return i
		}
	}
	return len(data)
}
