package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_FanoutToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var stdout bytes.Buffer
	path := filepath.Join(t.TempDir(), "app.log")

	l := Setup(Options{Level: "info", File: path, Stdout: &stdout})
	slog.Info("ban created", "component", "moderation", "receiver_id", "u1")
	slog.Debug("hidden")
	require.NoError(t, l.Close())

	assert.Contains(t, stdout.String(), "ban created")
	assert.NotContains(t, stdout.String(), "hidden")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "ban created", entry["msg"])
	assert.Equal(t, "moderation", entry["component"])
}

func TestSetLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var stdout bytes.Buffer
	l := Setup(Options{Level: "error", Stdout: &stdout})

	slog.Warn("dropped")
	l.SetLevel("debug")
	slog.Debug("kept")

	assert.NotContains(t, stdout.String(), "dropped")
	assert.Contains(t, stdout.String(), "kept")
}
