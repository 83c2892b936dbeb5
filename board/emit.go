package board

import (
	"kegboard/core"
	"kegboard/onewire"
	"kegboard/protocol"
	"kegboard/registry"
)

// begin resets the shared packet for a new message
func (b *Board) begin(msgType uint16) *protocol.Packet {
	b.pkt.Reset()
	b.pkt.SetType(msgType)
	return &b.pkt
}

// send queues the current packet, flushing once if the queue is full
func (b *Board) send() bool {
	if !b.output.OutputPacket(&b.pkt) {
		if err := b.Flush(); err != nil {
			core.DebugPrintln("[TX] flush failed: " + err.Error())
		}
		if !b.output.OutputPacket(&b.pkt) {
			b.emitFailed(b.pkt.Type(), "output queue full")
			return false
		}
	}
	b.stats.Sent++
	return true
}

func (b *Board) emitFailed(msgType uint16, reason string) {
	b.stats.EmitFailed++
	core.RecordEvent(core.EvtEmitFailed, uint8(msgType), b.clock.Now(), 0)
	core.DebugPrintln("[TX] dropped " + protocol.MessageName(msgType) + ": " + reason)
}

func (b *Board) sendHello() bool {
	p := b.begin(protocol.MessageHello)
	if err := p.AddUint16(protocol.HelloTagFirmwareVersion, protocol.FirmwareVersion); err != nil {
		b.emitFailed(protocol.MessageHello, err.Error())
		return false
	}
	if err := p.AddUint16(protocol.HelloTagProtocolVersion, protocol.ProtocolVersion); err != nil {
		b.emitFailed(protocol.MessageHello, err.Error())
		return false
	}
	return b.send()
}

// sendConfiguration reports the board name and timing. Values that do
// not fit the 16-bit wire fields are left out rather than truncated.
func (b *Board) sendConfiguration() bool {
	p := b.begin(protocol.MessageConfiguration)
	if err := p.AddString(protocol.ConfigurationTagBoardName, b.cfg.Name); err != nil {
		b.emitFailed(protocol.MessageConfiguration, err.Error())
		return false
	}
	if b.cfg.BaudRate <= 0xFFFF {
		if err := p.AddUint16(protocol.ConfigurationTagBaudRate, uint16(b.cfg.BaudRate)); err != nil {
			b.emitFailed(protocol.MessageConfiguration, err.Error())
			return false
		}
	}
	if b.cfg.MeterUpdateInterval <= 0xFFFF {
		if err := p.AddUint16(protocol.ConfigurationTagUpdateInterval, uint16(b.cfg.MeterUpdateInterval)); err != nil {
			b.emitFailed(protocol.MessageConfiguration, err.Error())
			return false
		}
	}
	return b.send()
}

func (b *Board) sendMeterStatus(m *Meter, ticks uint32) bool {
	p := b.begin(protocol.MessageMeterStatus)
	if err := p.AddString(protocol.MeterStatusTagName, m.name); err != nil {
		b.emitFailed(protocol.MessageMeterStatus, err.Error())
		return false
	}
	if err := p.AddUint32(protocol.MeterStatusTagReading, ticks); err != nil {
		b.emitFailed(protocol.MessageMeterStatus, err.Error())
		return false
	}
	return b.send()
}

func (b *Board) sendOutputStatus(o *Output) bool {
	p := b.begin(protocol.MessageOutputStatus)
	if err := p.AddString(protocol.OutputStatusTagName, o.name); err != nil {
		b.emitFailed(protocol.MessageOutputStatus, err.Error())
		return false
	}
	if err := p.AddUint16(protocol.OutputStatusTagReading, outputMode(o.enabled)); err != nil {
		b.emitFailed(protocol.MessageOutputStatus, err.Error())
		return false
	}
	return b.send()
}

func (b *Board) sendThermo(h registry.Handle, microCelsius int32) bool {
	p := b.begin(protocol.MessageThermoReading)
	if err := p.AddString(protocol.ThermoReadingTagName, b.thermoNames[h]); err != nil {
		b.emitFailed(protocol.MessageThermoReading, err.Error())
		return false
	}
	if err := p.AddInt32(protocol.ThermoReadingTagReading, microCelsius); err != nil {
		b.emitFailed(protocol.MessageThermoReading, err.Error())
		return false
	}
	return b.send()
}

func (b *Board) sendPresence(addr onewire.Address, present bool) bool {
	p := b.begin(protocol.MessageOnewirePresence)
	if err := p.AddUint64(protocol.OnewirePresenceTagDeviceID, addr.Uint64()); err != nil {
		b.emitFailed(protocol.MessageOnewirePresence, err.Error())
		return false
	}
	status := uint8(0)
	if present {
		status = 1
	}
	if err := p.AddUint8(protocol.OnewirePresenceTagStatus, status); err != nil {
		b.emitFailed(protocol.MessageOnewirePresence, err.Error())
		return false
	}
	return b.send()
}

// ThermoName returns the protocol name of a temperature sensor
func ThermoName(addr onewire.Address) string {
	return "thermo-" + addr.String()
}
