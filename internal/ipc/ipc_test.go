package ipc

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func socketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ctl.sock")
}

func startServer(t *testing.T, path string, handler Handler) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	listener, err := Listen(ctx, path, 100*time.Millisecond)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Serve(ctx, listener, handler)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestSendRoundtrip(t *testing.T) {
	path := socketPath(t)
	startServer(t, path, HandlerFunc(func(_ context.Context, req Request) Response {
		require.Equal(t, CommandPress, req.Command)
		require.Equal(t, "scroll_lock", req.Key)
		return Response{OK: true, State: "recording"}
	}))

	resp, err := Send(context.Background(), path, Request{Command: CommandPress, Key: "scroll_lock"}, time.Second)
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.Equal(t, "recording", resp.State)
}

func TestSendStatusCarriesChainStats(t *testing.T) {
	path := socketPath(t)
	startServer(t, path, HandlerFunc(func(context.Context, Request) Response {
		return Response{
			OK:    true,
			State: "idle",
			Transcribe: &ChainStats{
				Usage:         map[string]int64{"groq": 4},
				FallbackCount: 1,
				Active:        "groq",
				Providers:     2,
			},
		}
	}))

	resp, err := Send(context.Background(), path, Request{Command: CommandStatus}, time.Second)
	require.NoError(t, err)
	require.NotNil(t, resp.Transcribe)
	require.Equal(t, int64(4), resp.Transcribe.Usage["groq"])
	require.Equal(t, int64(1), resp.Transcribe.FallbackCount)
	require.Nil(t, resp.Enhance)
}

func TestSendNoListener(t *testing.T) {
	_, err := Send(context.Background(), socketPath(t), Request{Command: CommandStatus}, 200*time.Millisecond)
	require.Error(t, err)
}

func TestProbe(t *testing.T) {
	path := socketPath(t)

	alive, err := Probe(context.Background(), path, 200*time.Millisecond)
	require.NoError(t, err)
	require.False(t, alive)

	startServer(t, path, HandlerFunc(func(context.Context, Request) Response {
		return Response{OK: true, State: "idle"}
	}))

	alive, err = Probe(context.Background(), path, time.Second)
	require.NoError(t, err)
	require.True(t, alive)
}

func TestListenRejectsLiveSocket(t *testing.T) {
	path := socketPath(t)
	startServer(t, path, HandlerFunc(func(context.Context, Request) Response {
		return Response{OK: true}
	}))

	_, err := Listen(context.Background(), path, time.Second)
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestListenReclaimsStaleSocket(t *testing.T) {
	path := socketPath(t)

	// Simulate a crashed daemon: the socket file stays behind with nothing
	// accepting on it.
	stale, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	require.NoError(t, err)
	stale.SetUnlinkOnClose(false)
	require.NoError(t, stale.Close())

	reclaimed, err := Listen(context.Background(), path, 100*time.Millisecond)
	require.NoError(t, err)
	_ = reclaimed.Close()
}
