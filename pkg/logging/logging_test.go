package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger("move-downloads", tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "homebin", "move-downloads.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should exist at %s", logPath)
		})
	}
}

func TestLogFilePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	assert.Equal(t, "/custom/state/homebin/git-mirror.log", LogFilePath("git-mirror"))
}

func TestLogHelpers(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.WarnLevel) })

	t.Run("log_command", func(t *testing.T) {
		var buf bytes.Buffer
		LogCommand(zerolog.New(&buf), "git", []string{"pull"}, "/src/repo")

		out := buf.String()
		assert.Contains(t, out, `"command":"git"`)
		assert.Contains(t, out, `"args":["pull"]`)
		assert.Contains(t, out, `"dir":"/src/repo"`)
	})

	t.Run("log_operation_start", func(t *testing.T) {
		var buf bytes.Buffer
		done := LogOperationStart(zerolog.New(&buf), "dispatch a.pdf")
		assert.Contains(t, buf.String(), "Operation started")

		done()
		assert.Contains(t, buf.String(), "Operation completed")
		assert.Contains(t, buf.String(), `"duration":`)
	})
}
