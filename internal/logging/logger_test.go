package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONL(t *testing.T) {
	stateHome := t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateHome)

	rt, err := New("info")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(stateHome, "audioscribe", "log.jsonl"), rt.Path)

	rt.Logger.Info("daemon started", "pid", 42)
	require.NoError(t, rt.Close())

	data, err := os.ReadFile(rt.Path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	require.Equal(t, "daemon started", entry["msg"])
	require.Equal(t, float64(42), entry["pid"])
}

func TestNewAppends(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	first, err := New("info")
	require.NoError(t, err)
	first.Logger.Info("one")
	require.NoError(t, first.Close())

	second, err := New("info")
	require.NoError(t, err)
	second.Logger.Info("two")
	require.NoError(t, second.Close())

	data, err := os.ReadFile(second.Path)
	require.NoError(t, err)
	require.Contains(t, string(data), "one")
	require.Contains(t, string(data), "two")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel("info"))
	require.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestCloseWithoutSink(t *testing.T) {
	require.NoError(t, Runtime{}.Close())
}
