package main

import (
	"encoding/hex"
	"strings"

	"github.com/sirupsen/logrus"

	"kegboard/protocol"
)

// traceWriter stands in for the serial port when no device is given. It
// logs each frame the board writes as its message name and raw records.
type traceWriter struct {
	log    *logrus.Entry
	reader *protocol.Reader
	input  *protocol.FifoBuffer
}

func newTraceWriter(log *logrus.Entry) *traceWriter {
	t := &traceWriter{
		log:    log,
		reader: protocol.NewReader(),
		input:  protocol.NewFifoBuffer(protocol.OutputMax),
	}
	t.reader.SetErrorHandler(func(err error) {
		log.Warnf("board wrote a bad frame: %v", err)
	})
	return t
}

func (t *traceWriter) Write(p []byte) (int, error) {
	for data := p; len(data) > 0; {
		n := t.input.Write(data)
		data = data[n:]

		buf := t.input.Data()
		in := protocol.NewSliceInputBuffer(buf)
		t.reader.Receive(in, t.trace)
		t.input.Pop(len(buf) - in.Available())
		if n == 0 && t.input.Free() == 0 {
			t.input.Reset()
		}
	}
	return len(p), nil
}

func (t *traceWriter) trace(f *protocol.Frame) error {
	var records []string
	f.Tags(func(tag byte, value []byte) bool {
		records = append(records, hex.EncodeToString([]byte{tag})+"="+hex.EncodeToString(value))
		return true
	})
	t.log.WithField("type", protocol.MessageName(f.Type())).Info(strings.Join(records, " "))
	return nil
}
