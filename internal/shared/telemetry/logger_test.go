package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := L()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })
	return logs
}

func TestInfoWritesFields(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Info("analysis.status", map[string]any{
		"document_id": "doc-1",
		"status":      "completed",
		"duration_ms": 12.5,
	})

	entries := logs.FilterMessage("analysis.status").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "doc-1", ctx["document_id"])
	assert.Equal(t, "completed", ctx["status"])
	assert.Equal(t, 12.5, ctx["duration_ms"])
}

func TestErrorFieldsUseNamedError(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Error("analysis.failed", map[string]any{"error": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)
	Debug("noisy", nil)
	assert.Zero(t, logs.Len())
}

func TestFieldsSortedByKey(t *testing.T) {
	fields := Fields(map[string]any{"b": 1, "a": 2, "c": 3})
	require.Len(t, fields, 3)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "b", fields[1].Key)
	assert.Equal(t, "c", fields[2].Key)
	assert.Nil(t, Fields(nil))
}

func TestInitBuildsLogger(t *testing.T) {
	prev := L()
	t.Cleanup(func() { SetLogger(prev) })
	require.NoError(t, Init(false, true))
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, ParseLevel(" DEBUG "))
	assert.False(t, ParseLevel("info"))
}
