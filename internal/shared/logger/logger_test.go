package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/leasebot/internal/shared/config"
)

func TestConditionalSourceHandler(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		levels     []slog.Level
		wantSource bool
	}{
		{name: "info hidden", level: slog.LevelInfo, levels: []slog.Level{slog.LevelWarn, slog.LevelError}, wantSource: false},
		{name: "warn shown", level: slog.LevelWarn, levels: []slog.Level{slog.LevelWarn, slog.LevelError}, wantSource: true},
		{name: "error shown", level: slog.LevelError, levels: []slog.Level{slog.LevelWarn, slog.LevelError}, wantSource: true},
		{name: "info shown in debug", level: slog.LevelInfo, levels: []slog.Level{slog.LevelDebug, slog.LevelInfo}, wantSource: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := NewConditionalSourceHandler(slog.NewTextHandler(&buf, nil), tt.levels...)
			slog.New(h).Log(context.Background(), tt.level, "rental expired")

			assert.Equal(t, tt.wantSource, bytes.Contains(buf.Bytes(), []byte("source=")), buf.String())
		})
	}
}

func TestConditionalSourceHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := NewConditionalSourceHandler(slog.NewTextHandler(&buf, nil), slog.LevelError)

	slog.New(h).With("rental_id", 7).WithGroup("job").Info("fired", "kind", "expire_rental")

	out := buf.String()
	assert.Contains(t, out, "rental_id=7")
	assert.Contains(t, out, "job.kind=expire_rental")
	assert.NotContains(t, out, "source=")
}

func TestConditionalSourceHandler_RespectsBaseLevel(t *testing.T) {
	h := NewConditionalSourceHandler(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo}))

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestInit_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leasebot.log")

	require.NoError(t, Init(&config.LoggerConfig{Level: "debug", Format: "json", OutputPath: path}, false))
	NewLogger().Named("scheduler").Infow("job registered", "job_id", "deduction")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"job_id":"deduction"`)
	assert.Contains(t, string(data), `"logger":"scheduler"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
