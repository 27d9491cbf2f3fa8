package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := newFileLogger(&buf, nil, false)

	l.Info("toggled %s", "off")
	l.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug should be filtered at info level")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "toggled off", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestFileLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newFileLogger(&buf, nil, true)

	l.Debug("ssdp reply from %s", "192.168.1.20")
	l.Warn("slow")
	l.Error("broken")

	out := buf.String()
	assert.Contains(t, out, `"level":"debug"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "192.168.1.20")
}

func TestNewFileLogger_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "backlight.log")

	l, err := NewFileLogger(RotationConfig{File: path})
	require.NoError(t, err)

	l.Info("hello")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNewFileLogger_EmptyPath(t *testing.T) {
	_, err := NewFileLogger(RotationConfig{})
	assert.Error(t, err)
}

func TestMulti(t *testing.T) {
	a := NewBufferLogger()
	b := NewBufferLogger()
	l := Multi(a, nil, b)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	assert.Len(t, a.Messages, 4)
	assert.Len(t, b.Messages, 4)
	assert.Equal(t, "warn", b.Messages[2].Level)
}
