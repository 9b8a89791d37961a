package xlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

func memLogger(t *testing.T, opts ...XLoggerOption) (XLogger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	opts = append([]XLoggerOption{WithXLoggerWriteSyncer(zapcore.AddSync(buf))}, opts...)
	return NewXLogger(opts...), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestXLoggerLevel(t *testing.T) {
	logger, buf := memLogger(t, WithXLoggerLevel(LogLevelInfo))
	logger.Debug("hidden")
	logger.Info("shown", zap.Int("nodes", 3))
	logger.Warn("warned")
	require.NoError(t, logger.Sync())

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	require.Equal(t, "shown", entries[0]["msg"])
	require.Equal(t, "INFO", entries[0]["lvl"])
	require.Equal(t, float64(3), entries[0]["nodes"])
	require.Equal(t, "WARN", entries[1]["lvl"])

	logger.IncreaseLogLevel(zapcore.ErrorLevel)
	buf.Reset()
	logger.Warn("dropped")
	logger.Error(errors.New("boom"), "kept")
	entries = decodeLines(t, buf)
	require.Len(t, entries, 1)
	require.Equal(t, "boom", entries[0]["error"])
}

func TestXLoggerErrorStack(t *testing.T) {
	logger, buf := memLogger(t, WithXLoggerLevel(LogLevelDebug))
	logger.ErrorStack(infra.NewErrorStack("[tree] malformed"), "load failed")
	logger.ErrorStack(errors.New("plain"), "plain failed")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	require.Equal(t, "[tree] malformed", entries[0]["error"])
	frames, ok := entries[0]["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, frames)
	require.Equal(t, "plain", entries[1]["error"])
	require.NotContains(t, entries[1], "errorStack")
}

func TestXLoggerNamed(t *testing.T) {
	logger, buf := memLogger(t, WithXLoggerLevel(LogLevelDebug))
	logger.Named("avl").Debug("saved")
	logger.Logf(zapcore.InfoLevel, "loaded %d nodes", 7)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	require.Equal(t, "avl", entries[0]["component"])
	require.Equal(t, "loaded 7 nodes", entries[1]["msg"])
}

func TestXLoggerOptions(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriteSyncer(nil))
	})

	logger, buf := memLogger(t, WithXLoggerEncoder(PlainText), WithXLoggerLevel(LogLevelWarn))
	logger.Warn("plain")
	require.Contains(t, buf.String(), "WARN")
	require.Contains(t, buf.String(), "plain")
}

func TestGetLogLevelOrDefault(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault(""))
	require.Equal(t, zapcore.InfoLevel, getLogLevelOrDefault("info"))
	require.Equal(t, zapcore.WarnLevel, getLogLevelOrDefault("WARN"))
	require.Equal(t, zapcore.ErrorLevel, getLogLevelOrDefault("error"))
	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault("verbose"))
}

func TestNopXLogger(t *testing.T) {
	logger := NewNopXLogger()
	logger.Info("nothing")
	logger.ErrorStack(infra.NewErrorStack("nothing"), "nothing")
	require.NotNil(t, logger.Named("rb"))
}
