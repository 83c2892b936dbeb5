package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kegboard/protocol"
)

func frameOf(t *testing.T, p *protocol.Packet) *protocol.Frame {
	t.Helper()
	f, err := p.Frame()
	require.NoError(t, err)
	return &f
}

func TestCommandRegistry(t *testing.T) {
	registry := NewCommandRegistry()

	var called bool
	registry.Register(protocol.MessagePing, "ping", func(f *protocol.Frame) error {
		called = true
		return nil
	})

	cmd, ok := registry.GetCommand(protocol.MessagePing)
	require.True(t, ok)
	assert.Equal(t, "ping", cmd.Name)

	err := registry.Dispatch(frameOf(t, protocol.NewPacket(protocol.MessagePing)))
	assert.NoError(t, err)
	assert.True(t, called)

	// Test unknown command
	err = registry.Dispatch(frameOf(t, protocol.NewPacket(0x99)))
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestCommandRegistryMultiple(t *testing.T) {
	registry := NewCommandRegistry()

	registry.Register(protocol.MessageSetOutput, "set_output", func(f *protocol.Frame) error { return nil })
	registry.Register(protocol.MessagePing, "ping", func(f *protocol.Frame) error { return nil })
	registry.Register(protocol.MessageSetOutput, "set_output_v2", func(f *protocol.Frame) error { return nil })

	assert.Equal(t, 2, registry.Count())
	assert.Equal(t, []string{"set_output_v2", "ping"}, registry.Names())
}

func TestCommandWithArguments(t *testing.T) {
	registry := NewCommandRegistry()

	var receivedID, receivedMode uint8
	registry.Register(protocol.MessageSetOutput, "set_output", func(f *protocol.Frame) error {
		var err error
		if receivedID, err = f.ReadUint8(protocol.SetOutputTagOutputID); err != nil {
			return err
		}
		receivedMode, err = f.ReadUint8(protocol.SetOutputTagOutputMode)
		return err
	})

	p := protocol.NewPacket(protocol.MessageSetOutput)
	require.NoError(t, p.AddUint8(protocol.SetOutputTagOutputID, 3))
	require.NoError(t, p.AddUint8(protocol.SetOutputTagOutputMode, protocol.OutputEnabled))

	require.NoError(t, registry.Dispatch(frameOf(t, p)))
	assert.Equal(t, uint8(3), receivedID)
	assert.Equal(t, uint8(protocol.OutputEnabled), receivedMode)

	// Missing argument surfaces the decode error
	err := registry.Dispatch(frameOf(t, protocol.NewPacket(protocol.MessageSetOutput)))
	assert.ErrorIs(t, err, protocol.ErrTagNotFound)
}
