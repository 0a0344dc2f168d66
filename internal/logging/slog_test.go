package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textLogger() (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		level string
		log   func(l *SlogLogger)
	}{
		{"DEBUG", func(l *SlogLogger) { l.Debug(ctx, "flow transition", "to", "review") }},
		{"INFO", func(l *SlogLogger) { l.Info(ctx, "flow transition", "to", "review") }},
		{"WARN", func(l *SlogLogger) { l.Warn(ctx, "flow transition", "to", "review") }},
		{"ERROR", func(l *SlogLogger) { l.Error(ctx, "flow transition", "to", "review") }},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, buf := textLogger()
			tt.log(l)

			out := buf.String()
			assert.Contains(t, out, "level="+tt.level)
			assert.Contains(t, out, `msg="flow transition"`)
			assert.Contains(t, out, "to=review")
		})
	}
}

func TestSlogLogger_With(t *testing.T) {
	l, buf := textLogger()

	scoped := l.With("module", "writer")
	scoped.Info(context.Background(), "raw input saved", "achievement_id", "a-1")
	l.Info(context.Background(), "unscoped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "module=writer")
	assert.Contains(t, lines[0], "achievement_id=a-1")
	assert.NotContains(t, lines[1], "module=writer")
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	l = l.With("module", "x")
	assert.NotPanics(t, func() {
		l.Debug(context.TODO(), "ignored")
		l.Error(context.TODO(), "ignored", "k", "v")
	})
}

func TestNew_JSONFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json", "warn")

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "rollup skipped", "project_id", "p-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "rollup skipped", rec["msg"])
	assert.Equal(t, "p-1", rec["project_id"])
}

func TestNew_TextFormatUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "text", "chatty")

	log.Debug(context.Background(), "dbg")
	log.Info(context.Background(), "inf")

	out := buf.String()
	assert.NotContains(t, out, "msg=dbg")
	assert.Contains(t, out, "msg=inf")
}

func TestNop_With(t *testing.T) {
	var l Logger = Nop{}
	l = l.With("k", "v")
	l.Error(context.Background(), "ignored")
}
