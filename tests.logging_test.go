package main

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
)

func TestSetupLogging(t *testing.T) {
	t.Run("development tees to console", func(t *testing.T) {
		file, console := &bytes.Buffer{}, &bytes.Buffer{}
		config := &Config{GitCommit: "abc123", GitTag: "v1.0.0"}
		logger, flush := SetupLogging(config, file, console)
		logger.Info("book added", zap.String("book.id", "b:1"))
		require.NoError(t, flush())

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
		assert.Equal(t, "book added", entry["msg"])
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "b:1", entry["book.id"])
		assert.Equal(t, "abc123", entry["app.commit"])
		assert.Equal(t, "v1.0.0", entry["app.tag"])
		assert.Contains(t, entry, "timestamp")
		assert.Contains(t, entry, "caller")

		assert.Contains(t, console.String(), "book added")
	})

	t.Run("production writes file only", func(t *testing.T) {
		file, console := &bytes.Buffer{}, &bytes.Buffer{}
		config := &Config{IsProduction: true, LogLevel: zapcore.WarnLevel}
		logger, flush := SetupLogging(config, file, console)
		logger.Info("dropped")
		logger.Warn("kept")
		require.NoError(t, flush())

		lines := strings.Split(strings.TrimSpace(file.String()), "\n")
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], `"msg":"kept"`)
		assert.Contains(t, lines[0], `"level":"warn"`)
		assert.Empty(t, console.String())
	})
}

func TestOpenLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nested", "library_management.log")
	for i := 0; i < 2; i++ {
		f, err := OpenLogFile(path)
		require.NoError(t, err)
		_, err = f.WriteString("line\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\nline\n", string(data))
}
