package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kegboard/core"
)

func TestInitRejectsBadLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "chatty"
	assert.Error(t, Init(&cfg))
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "kbsim.log")
	cfg := DefaultConfig()
	cfg.EnableConsole = false
	cfg.FilePath = path
	cfg.Format = "json"
	require.NoError(t, Init(&cfg))

	GetLogger().Info("hello kegboard")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello kegboard"`)
}

func TestDebugWriterBridge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.LogHexDump = true
	require.NoError(t, Init(&cfg))

	var buf bytes.Buffer
	GetLogger().SetOutput(&buf)
	GetLogger().SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	InstallDebugWriter()
	defer core.SetDebugEnabled(false)
	assert.True(t, core.IsDebugEnabled())

	core.DebugPrintln("[THERMO] found thermo-28ff641e0f000034")
	assert.Contains(t, buf.String(), "found thermo-28ff641e0f000034")
	assert.Contains(t, buf.String(), "source=firmware")

	buf.Reset()
	HexDump("tx", []byte{0x4B, 0x42})
	assert.Contains(t, buf.String(), "hex_data=4B42")
}
