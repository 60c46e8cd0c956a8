package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.ErrorContains(t, err, `unknown log level "loud"`)
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, c, err := New(Config{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer c.Close()

	l.Info("hidden")
	l.Warn("shown", "module", "rage")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown module=rage")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Config{Format: "json"}, &buf)
	require.NoError(t, err)

	l.Info("run complete", "events", 3)
	assert.Contains(t, buf.String(), `"msg":"run complete","events":3`)
}

func TestNew_TeesIntoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fightlog.log")
	var buf bytes.Buffer
	l, c, err := New(Config{File: path}, &buf)
	require.NoError(t, err)

	l.Info("hello")
	require.NoError(t, c.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	_, _, err := New(Config{Format: "xml"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown log format")
}
