package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads the current pin state
	GetPin(pin GPIOPin) (bool, error)
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}

// MemoryGPIO is a GPIODriver that only records pin state.
// It backs the native simulator and tests.
type MemoryGPIO struct {
	pins       map[GPIOPin]bool
	configured map[GPIOPin]bool
}

// NewMemoryGPIO creates an empty MemoryGPIO
func NewMemoryGPIO() *MemoryGPIO {
	return &MemoryGPIO{
		pins:       make(map[GPIOPin]bool),
		configured: make(map[GPIOPin]bool),
	}
}

func (m *MemoryGPIO) ConfigureOutput(pin GPIOPin) error {
	m.configured[pin] = true
	m.pins[pin] = false
	return nil
}

func (m *MemoryGPIO) SetPin(pin GPIOPin, value bool) error {
	m.pins[pin] = value
	return nil
}

func (m *MemoryGPIO) GetPin(pin GPIOPin) (bool, error) {
	return m.pins[pin], nil
}

// Configured reports whether pin was configured as an output
func (m *MemoryGPIO) Configured(pin GPIOPin) bool {
	return m.configured[pin]
}
