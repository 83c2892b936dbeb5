package board

import (
	"kegboard/core"
	"kegboard/protocol"
)

func (b *Board) registerCommands() {
	b.commands.Register(protocol.MessagePing, "ping", b.handlePing)
	b.commands.Register(protocol.MessageSetOutput, "set_output", b.handleSetOutput)
}

// Receive feeds bytes read from the serial port through the frame reader
// and runs any complete commands. Replies are flushed before returning.
func (b *Board) Receive(data []byte) error {
	for len(data) > 0 {
		n := b.input.Write(data)
		data = data[n:]
		b.processInput()

		if n == 0 && b.input.Free() == 0 {
			// Reader could not make progress; start over
			b.stats.InputOverflow += uint32(b.input.Available())
			b.input.Reset()
		}
	}
	return b.Flush()
}

func (b *Board) processInput() {
	if b.input.Available() == 0 {
		return
	}
	data := b.input.Data()
	in := protocol.NewSliceInputBuffer(data)
	b.reader.Receive(in, b.handleFrame)
	if consumed := len(data) - in.Available(); consumed > 0 {
		b.input.Pop(consumed)
	}
}

func (b *Board) handleFrame(f *protocol.Frame) error {
	if !protocol.IsCommand(f.Type()) {
		// Board-to-host messages echoed back are not commands
		return nil
	}
	if err := b.commands.Dispatch(f); err != nil {
		b.stats.CommandErrors++
		return err
	}
	return nil
}

func (b *Board) frameError(err error) {
	core.RecordEvent(core.EvtFrameDropped, 0, b.clock.Now(), 0)
	core.DebugPrintln("[RX] " + err.Error())
}

func (b *Board) handlePing(f *protocol.Frame) error {
	b.sendHello()
	b.sendConfiguration()
	return nil
}

func (b *Board) handleSetOutput(f *protocol.Frame) error {
	id, err := f.ReadUint8(protocol.SetOutputTagOutputID)
	if err != nil {
		return err
	}
	mode, err := readMode(f)
	if err != nil {
		return err
	}
	return b.SetOutput(int(id), mode != protocol.OutputDisabled)
}

// readMode accepts the output mode as a uint16, or as a single byte from
// older hosts
func readMode(f *protocol.Frame) (uint16, error) {
	if v, ok := f.ReadTag(protocol.SetOutputTagOutputMode); ok && len(v) == 1 {
		return uint16(v[0]), nil
	}
	return f.ReadUint16(protocol.SetOutputTagOutputMode)
}
