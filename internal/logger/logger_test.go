package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInit_DisabledDiscards(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Enabled: false, Writer: &buf})
	Error("should not appear")
	require.Zero(t, buf.Len())
}

func TestInit_TextLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Enabled: true, Writer: &buf, Level: slog.LevelWarn})
	t.Cleanup(func() { Init(Options{}) })

	Info("dropped")
	Warn("kept", "pool", 3)

	out := buf.String()
	require.NotContains(t, out, "dropped")
	require.Contains(t, out, "kept")
	require.Contains(t, out, "pool=3")
}

func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Enabled: true, Writer: &buf, Level: slog.LevelDebug, JSON: true})
	t.Cleanup(func() { Init(Options{}) })

	Debug("allocating a new pool", "pools", 5)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "allocating a new pool", rec["msg"])
	require.EqualValues(t, 5, rec["pools"])
}
