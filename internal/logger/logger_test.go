package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json"}, &buf)

	l.Info().Str("ip", "1.2.3.4").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "1.2.3.4", entry["ip"])
	assert.Contains(t, entry, "time")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "console"}, &buf)

	l.Warn().Msg("upstream slow")

	out := buf.String()
	assert.Contains(t, out, "upstream slow")
	assert.Contains(t, out, "WRN")
	assert.NotContains(t, out, "\x1b[", "console output to a buffer must not be colored")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.TraceLevel, parseLevel("trace"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
}

func TestOpenOutput(t *testing.T) {
	assert.Equal(t, os.Stdout, openOutput("stdout"))
	assert.Equal(t, os.Stderr, openOutput("stderr"))
	assert.Equal(t, os.Stderr, openOutput(filepath.Join(t.TempDir(), "missing", "dir", "app.log")))

	path := filepath.Join(t.TempDir(), "app.log")
	w := openOutput(path)
	f, ok := w.(*os.File)
	require.True(t, ok)
	t.Cleanup(func() { _ = f.Close() })

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
