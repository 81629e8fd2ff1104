package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestNew(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("json to stderr", func(t *testing.T) {
		l, err := New(&Config{Level: "debug", Format: "json", Output: "stderr"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("level filters lower entries", func(t *testing.T) {
		l, err := New(&Config{Level: "warn", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})
}

func TestNew_ExtraCoreReceivesEntries(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	l, err := New(&Config{Level: "info", Format: "json", Output: "stderr"}, core)
	require.NoError(t, err)

	l.Info("requirement created", zap.String("requirement_id", "r-1"))

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "requirement created", logs[0].Message)
	assert.Equal(t, "r-1", logs[0].ContextMap()["requirement_id"])
}

func TestNew_StaticFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	l, err := New(&Config{Level: "info", Format: "json", Output: "stderr", Service: "reqtrace-backend", Env: "test"}, core)
	require.NoError(t, err)

	l.Info("ready")

	require.Len(t, recorded.All(), 1)
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "reqtrace-backend", fields["service"])
	assert.Equal(t, "test", fields["env"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestCreateWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	w := createWriter(path)
	require.NotNil(t, w)

	_, err := w.Write([]byte("line\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}

func TestCreateWriter_UnwritablePathFallsBack(t *testing.T) {
	w := createWriter(filepath.Join(t.TempDir(), "missing", "dir", "app.log"))
	assert.NotNil(t, w)
}

func TestSync(t *testing.T) {
	l := zap.NewNop()
	assert.NoError(t, Sync(l))
}
