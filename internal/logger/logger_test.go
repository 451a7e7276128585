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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gzhole/toolscout/internal/config"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf), false)
	require.NoError(t, err)

	log.Warn("artifact skipped", zap.String("path", "B.yaml"), zap.String("reason", "missing name"))
	log.Debug("not shown")
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, Name, entry["logger"])
	assert.Equal(t, "artifact skipped", entry["msg"])
	assert.Equal(t, "B.yaml", entry["path"])
	assert.Equal(t, "missing name", entry["reason"])
}

func TestNew_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LoggerConfig{Level: "debug", Format: "console"}, zapcore.AddSync(&buf), false)
	require.NoError(t, err)

	log.Debug("artifact store loaded", zap.Int("artifacts", 3))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "artifact store loaded")
	assert.Contains(t, out, `{"artifacts": 3}`)
	assert.NotContains(t, out, "\x1b[")
}

func TestNew_RotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "toolscout.log")
	var console bytes.Buffer
	log, err := New(config.LoggerConfig{
		Level:      "info",
		Format:     "console",
		LogFile:    path,
		MaxSize:    1,
		MaxBackups: 1,
	}, zapcore.AddSync(&console), false)
	require.NoError(t, err)

	log.Info("scan complete", zap.String("scan_id", "abc"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "abc", entry["scan_id"])
	assert.Contains(t, console.String(), "scan complete")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "chatty"}, zapcore.AddSync(&bytes.Buffer{}), false)
	assert.Error(t, err)
}

func TestResolveFormat(t *testing.T) {
	assert.Equal(t, "console", ResolveFormat("auto", true))
	assert.Equal(t, "json", ResolveFormat("auto", false))
	assert.Equal(t, "json", ResolveFormat("", false))
	assert.Equal(t, "json", ResolveFormat("json", true))
	assert.Equal(t, "console", ResolveFormat("console", false))
}
