package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedZap(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestZapLogger_Levels(t *testing.T) {
	log, logs := newObservedZap(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	want := []struct {
		level zapcore.Level
		msg   string
		key   string
	}{
		{zapcore.DebugLevel, "dbg", "a"},
		{zapcore.InfoLevel, "inf", "b"},
		{zapcore.WarnLevel, "wrn", "c"},
		{zapcore.ErrorLevel, "err", "d"},
	}
	for i, w := range want {
		require.Equal(t, w.level, entries[i].Level)
		require.Equal(t, w.msg, entries[i].Message)
		require.Contains(t, entries[i].ContextMap(), w.key)
	}
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	log, logs := newObservedZap(t)

	log.With("target", "repos/7").Info(context.Background(), "updated", "rows", 1)

	entries := logs.FilterMessage("updated").AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "repos/7", fields["target"])
	require.EqualValues(t, 1, fields["rows"])
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(FormatJSON, "debug", &buf)
	require.NoError(t, err)
	l.Debug(context.Background(), "hello", "k", "v")
	require.Contains(t, buf.String(), `"msg":"hello"`)
	require.Contains(t, buf.String(), `"k":"v"`)

	buf.Reset()
	l, err = New(FormatText, "warn", &buf)
	require.NoError(t, err)
	l.Info(context.Background(), "skipped")
	l.Warn(context.Background(), "kept")
	require.NotContains(t, buf.String(), "skipped")
	require.Contains(t, buf.String(), "msg=kept")

	l, err = New(FormatZap, "info", &buf)
	require.NoError(t, err)
	require.IsType(t, &ZapLogger{}, l)

	_, err = New("xml", "info", &buf)
	require.Error(t, err)

	_, err = New(FormatText, "loud", &buf)
	require.Error(t, err)
}

func TestNop_DiscardsAndChains(t *testing.T) {
	l := Nop().With("a", 1)
	l.Info(context.Background(), "nothing")
	require.NotNil(t, l)
}
