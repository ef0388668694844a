package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"pricechart/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestNewInvalidLevel
func TestNewInvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	require.Error(t, err)
}

// go test -v --run TestNewJSONOutput
func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := newWithWriter(config.LogConfig{Level: "info", Format: "json", Environment: "prod"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("tick applied")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "tick applied", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}

// go test -v --run TestNewWithFile
func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chart.log")

	var buf bytes.Buffer
	log, err := newWithWriter(config.LogConfig{Level: "debug", Environment: "dev", OutputFile: path}, &buf)
	require.NoError(t, err)

	log.Info("hello")
	_ = log.Sync()
	assert.Contains(t, buf.String(), "hello")
	assert.FileExists(t, path)
}
