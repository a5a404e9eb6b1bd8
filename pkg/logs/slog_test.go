package logs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLogLevel_GetLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.GetLevel())
	assert.Equal(t, slog.LevelInfo, LevelInfo.GetLevel())
	assert.Equal(t, slog.LevelWarn, LevelWarn.GetLevel())
	assert.Equal(t, slog.LevelError, LevelError.GetLevel())
	assert.Equal(t, slog.LevelInfo, LogLevel(42).GetLevel())
}

func TestNew(t *testing.T) {
	t.Run("json output with attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(WithOutput(&buf), WithLevel(LevelDebug)).With("component", "cache")

		logger.Debug("stored value", "key", "abc")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "stored value", record["msg"])
		assert.Equal(t, "cache", record["component"])
		assert.Equal(t, "abc", record["key"])
		assert.Equal(t, "DEBUG", record["level"])
	})

	t.Run("level filters records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(WithOutput(&buf), WithLevel(LevelWarn))

		logger.Info("dropped")
		assert.Empty(t, buf.String())

		logger.Error("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(WithOutput(&buf), WithJSONFormat(false))

		logger.Info("hello", "n", 1)
		assert.Contains(t, buf.String(), "msg=hello")
		assert.Contains(t, buf.String(), "n=1")
	})
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(New(WithOutput(&buf)))

	Info("through default")
	assert.Contains(t, buf.String(), "through default")
}
