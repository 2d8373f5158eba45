package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestLevel(t *testing.T) {
	t.Setenv("ZWISCHEN_DEBUG", "")
	assert.Equal(t, slog.LevelWarn, Level(false))
	assert.Equal(t, slog.LevelDebug, Level(true))

	t.Setenv("ZWISCHEN_DEBUG", "1")
	assert.Equal(t, slog.LevelDebug, Level(false))
}

func TestSetupDefaultIsQuiet(t *testing.T) {
	restoreDefault(t)
	t.Setenv("ZWISCHEN_DEBUG", "")
	var buf bytes.Buffer

	cleanup := Setup(Options{Stderr: &buf})
	defer cleanup()
	slog.Info("scanning")
	slog.Warn("tool missing", "tool", "gitleaks")

	assert.NotContains(t, buf.String(), "scanning")
	assert.Contains(t, buf.String(), "tool missing")
	assert.Contains(t, buf.String(), "tool=gitleaks")
}

func TestSetupVerbose(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	cleanup := Setup(Options{Verbose: true, Stderr: &buf})
	defer cleanup()
	slog.Debug("gitleaks exited", "code", 1)

	assert.Contains(t, buf.String(), "gitleaks exited")
}

func TestSetupWritesToFile(t *testing.T) {
	restoreDefault(t)
	path := filepath.Join(t.TempDir(), "zwischen.log")
	var buf bytes.Buffer

	cleanup := Setup(Options{Verbose: true, File: path, Stderr: &buf})
	slog.Debug("to file")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Empty(t, buf.String())
}
