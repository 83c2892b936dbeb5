package core

import (
	"errors"
	"sync"

	"kegboard/protocol"
)

// ErrUnknownCommand is returned when no handler exists for a message type
var ErrUnknownCommand = errors.New("unknown command")

// CommandHandler handles one inbound host command frame
type CommandHandler func(f *protocol.Frame) error

// Command represents a host -> board command
type Command struct {
	Type    uint16
	Name    string
	Handler CommandHandler
}

// CommandRegistry maps message types to their handlers
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[uint16]*Command
	order    []uint16
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[uint16]*Command),
	}
}

// Register adds a command handler, replacing any previous one for the type
func (r *CommandRegistry) Register(msgType uint16, name string, handler CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[msgType]; !exists {
		r.order = append(r.order, msgType)
	}
	r.commands[msgType] = &Command{
		Type:    msgType,
		Name:    name,
		Handler: handler,
	}
}

// GetCommand retrieves a command by message type
func (r *CommandRegistry) GetCommand(msgType uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[msgType]
	return cmd, ok
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Names returns registered command names in registration order
func (r *CommandRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.order))
	for _, t := range r.order {
		names = append(names, r.commands[t].Name)
	}
	return names
}

// Dispatch calls the handler registered for the frame's message type
func (r *CommandRegistry) Dispatch(f *protocol.Frame) error {
	cmd, ok := r.GetCommand(f.Type())
	if !ok || cmd.Handler == nil {
		return ErrUnknownCommand
	}

	return cmd.Handler(f)
}
