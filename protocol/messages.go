package protocol

// Message types. Values below 0x80 flow board -> host, the rest host -> board.
const (
	MessageHello            uint16 = 0x01
	MessageConfiguration    uint16 = 0x02
	MessageMeterStatus      uint16 = 0x10
	MessageThermoReading    uint16 = 0x11
	MessageOutputStatus     uint16 = 0x12
	MessageOnewirePresence  uint16 = 0x13
	MessageAuthToken        uint16 = 0x14
	MessagePing             uint16 = 0x81
	MessageSetOutput        uint16 = 0x84
	messageCommandThreshold uint16 = 0x80
)

// Tags are scoped to their message type.
const (
	HelloTagFirmwareVersion byte = 0x01
	HelloTagProtocolVersion byte = 0x02

	ConfigurationTagBoardName      byte = 0x01
	ConfigurationTagBaudRate       byte = 0x02
	ConfigurationTagUpdateInterval byte = 0x03

	MeterStatusTagName    byte = 0x01
	MeterStatusTagReading byte = 0x02

	ThermoReadingTagName    byte = 0x01
	ThermoReadingTagReading byte = 0x02

	OutputStatusTagName    byte = 0x01
	OutputStatusTagReading byte = 0x02

	OnewirePresenceTagDeviceID byte = 0x01
	OnewirePresenceTagStatus   byte = 0x02

	AuthTokenTagDevice byte = 0x01
	AuthTokenTagToken  byte = 0x02
	AuthTokenTagStatus byte = 0x03

	SetOutputTagOutputID   byte = 0x01
	SetOutputTagOutputMode byte = 0x02
)

// Output modes carried by set_output
const (
	OutputDisabled = 0
	OutputEnabled  = 1
)

// IsCommand reports whether msgType is a host -> board command
func IsCommand(msgType uint16) bool {
	return msgType >= messageCommandThreshold
}

// MessageName returns a short name for logging
func MessageName(msgType uint16) string {
	switch msgType {
	case MessageHello:
		return "hello"
	case MessageConfiguration:
		return "configuration"
	case MessageMeterStatus:
		return "meter_status"
	case MessageThermoReading:
		return "thermo_reading"
	case MessageOutputStatus:
		return "output_status"
	case MessageOnewirePresence:
		return "onewire_presence"
	case MessageAuthToken:
		return "auth_token"
	case MessagePing:
		return "ping"
	case MessageSetOutput:
		return "set_output"
	default:
		return "unknown"
	}
}
