package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, logging.ParseLevel(in), "input %q", in)
	}
}

func TestPhaseTagsRecords(t *testing.T) {
	base := logging.New(slog.LevelDebug)
	child := logging.Phase(base, "mono")
	require.NotNil(t, child)

	var buf bytes.Buffer
	logging.Phase(slog.New(slog.NewTextHandler(&buf, nil)), "mono").Info("step")
	require.Contains(t, buf.String(), "phase=mono")
}
