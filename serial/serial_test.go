package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	assert.Equal(t, "/dev/ttyUSB0", cfg.Device)
	assert.Equal(t, 115200, cfg.Baud)
	assert.Equal(t, 100, cfg.ReadTimeout)
}

func TestOpenRejectsMissingDevice(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)

	_, err = Open(&Config{Baud: DefaultBaud})
	assert.Error(t, err)
}

func TestOpenNamesDevice(t *testing.T) {
	_, err := Open(DefaultConfig("/dev/kegboard-missing"))
	assert.ErrorContains(t, err, "/dev/kegboard-missing")
}
