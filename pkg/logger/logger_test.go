package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wavythought/relay/pkg/config"
	"github.com/wavythought/relay/pkg/logger"
)

func TestHandler_AddsContextAttrs(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	l := logger.New(slog.LevelInfo, buf)

	ctx := logger.SetRequestID(context.Background(), "req-1")
	ctx = logger.SetIP(ctx, "203.0.113.7")
	ctx = logger.SetMethod(ctx, "POST")
	ctx = logger.SetURL(ctx, "/api/contact")

	l.With("component", "test").InfoContext(ctx, "incoming request")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	require.Equal(t, "incoming request", record["msg"])
	require.Equal(t, "req-1", record["request_id"])
	require.Equal(t, "203.0.113.7", record["ip"])
	require.Equal(t, "POST", record["method"])
	require.Equal(t, "/api/contact", record["url"])
	require.Equal(t, "test", record["component"])
	require.Equal(t, "wavythought-relay", record["origin_service"])
}

func TestHandler_RespectsLevel(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	l := logger.New(slog.LevelWarn, buf)

	l.Info("hidden")
	require.Zero(t, buf.Len())

	l.Warn("shown")
	require.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestRequestIDFromCtx(t *testing.T) {
	t.Parallel()

	require.Empty(t, logger.RequestIDFromCtx(context.Background()))
	require.Equal(t, "abc", logger.RequestIDFromCtx(logger.SetRequestID(context.Background(), "abc")))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, logger.ParseLevel(tt.in))
		})
	}
}

func TestOutput_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "relay.log")

	w, closer := logger.Output(config.Logger{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})

	l := logger.New(slog.LevelInfo, w)
	l.Info("written to file")

	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "written to file")
}

func TestOutput_Stdout(t *testing.T) {
	t.Parallel()

	w, closer := logger.Output(config.Logger{})

	require.Equal(t, os.Stdout, w)
	require.NoError(t, closer.Close())
}
