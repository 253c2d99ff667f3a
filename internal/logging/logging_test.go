package logging

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/assert"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		Input string
		Want  slog.Level
	}{
		{Input: "debug", Want: slog.LevelDebug},
		{Input: "", Want: slog.LevelInfo},
		{Input: "INFO", Want: slog.LevelInfo},
		{Input: "warning", Want: slog.LevelWarn},
		{Input: "error", Want: slog.LevelError},
	}

	for _, tc := range testCases {
		got, err := ParseLevel(tc.Input)
		assert.NilError(t, err)
		assert.Equal(t, got, tc.Want)
	}

	_, err := ParseLevel("loud")
	assert.ErrorContains(t, err, "unknown log level")
}

func TestNewWritesPlainTextToBuffer(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("State changed", "state", "PAUSED")

	out := buf.String()
	assert.Assert(t, !strings.Contains(out, "hidden"))
	assert.Assert(t, strings.Contains(out, "State changed"))
	assert.Assert(t, strings.Contains(out, "state=PAUSED"))
	assert.Assert(t, !strings.Contains(out, "\x1b["), "no ANSI colors for non-terminals")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idlerig.log")
	f, err := OpenFile(path)
	assert.NilError(t, err)
	defer f.Close()

	New(f, slog.LevelInfo).Info("hello")
	assert.Assert(t, !isTerminal(f))
}
