package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/splitmerge/internal/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var data map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &data), "line is not JSON: %s", line)
		out = append(out, data)
	}
	return out
}

func TestNewLogger_Formats(t *testing.T) {
	pretty := NewLogger(config.NewAppConfigWithOptions(config.WithLogFormat(config.LogFormatPretty)))
	require.NotNil(t, pretty.Slog())
	assert.IsType(t, &TerminalHandler{}, pretty.Handler())

	jsonLogger := NewLogger(config.NewAppConfigWithOptions(config.WithLogFormat(config.LogFormatJSON)))
	assert.IsType(t, &slog.JSONHandler{}, jsonLogger.Handler())
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "WARN").Slog()

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["msg"])
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO").With("component", "splitter")

	logger.Slog().Info("split complete")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "splitter", lines[0]["component"])
}

func TestLogger_ForContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	logger.ForContext(WithCorrelationID(context.Background(), "corr-123")).Info("tagged")
	logger.ForContext(context.Background()).Info("untagged")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "corr-123", lines[0]["correlation_id"])
	assert.NotContains(t, lines[1], "correlation_id")
}

func TestFromContext_NilLoggerUsesDefault(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background(), nil))
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, CorrelationID(context.Background()))
	assert.Equal(t, "abc", CorrelationID(WithCorrelationID(context.Background(), "abc")))

	id := NewCorrelationID()
	assert.Len(t, id, 16)
	assert.NotEqual(t, id, NewCorrelationID())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestConfigure_SetsDefault(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	logger := Configure(config.NewAppConfigWithOptions(config.WithLogFormat(config.LogFormatJSON)))

	assert.Same(t, logger.Slog(), slog.Default())
}
