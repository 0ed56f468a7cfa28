package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_DefaultsBuild(t *testing.T) {
	t.Parallel()

	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormatBuilds(t *testing.T) {
	t.Parallel()

	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	t.Parallel()

	_, err := NewLogger(LogConfig{OutputPaths: []string{"scheme://nope"}})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"Error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "level %q", tt.in)
	}
}

func TestLogger_EmitsLevelsAndMessage(t *testing.T) {
	t.Parallel()

	l, logs := newObservedLogger(zapcore.DebugLevel)
	l.Debug("claiming entry")
	l.Info("stage done")
	l.Warn("retrying stage")
	l.Error("stage failed")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "stage done", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	t.Parallel()

	l, logs := newObservedLogger(zapcore.InfoLevel)
	l.Debug("invisible")
	l.Info("visible")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "visible", logs.All()[0].Message)
}

func TestLogger_FieldTypes(t *testing.T) {
	t.Parallel()

	l, logs := newObservedLogger(zapcore.DebugLevel)
	l.Info("tick",
		String("case_number", "CRL.A. 1482/2012"),
		Int("attempts", 2),
		Int64("bytes", 4096),
		Float64("score", 0.73),
		Bool("cached", true),
		Duration("elapsed", 250*time.Millisecond),
		Err(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	got := entries[0].ContextMap()
	assert.Equal(t, "CRL.A. 1482/2012", got["case_number"])
	assert.Equal(t, int64(2), got["attempts"])
	assert.Equal(t, int64(4096), got["bytes"])
	assert.Equal(t, 0.73, got["score"])
	assert.Equal(t, true, got["cached"])
	assert.Equal(t, 250*time.Millisecond, got["elapsed"])
	assert.Equal(t, "boom", got["error"])
}

func TestErr_NilError(t *testing.T) {
	t.Parallel()

	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestLogger_WithCarriesFields(t *testing.T) {
	t.Parallel()

	l, logs := newObservedLogger(zapcore.DebugLevel)
	child := l.With(String("worker_id", "3"))
	child.Info("claimed")
	l.Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "3", entries[0].ContextMap()["worker_id"])
	assert.NotContains(t, entries[1].ContextMap(), "worker_id")
}

func TestLogger_NamedNests(t *testing.T) {
	t.Parallel()

	l, logs := newObservedLogger(zapcore.DebugLevel)
	l.Named("worker").Named("kafka").Info("subscribed")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "worker.kafka", entries[0].LoggerName)
}

func TestNopLogger_ReturnsSelf(t *testing.T) {
	t.Parallel()

	l := NewNopLogger()
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("sub"))

	// Nothing to assert beyond not panicking.
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}
