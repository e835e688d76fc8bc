package transcribe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rodolfonobrega/audioscribe/internal/audio"
	"github.com/rodolfonobrega/audioscribe/internal/chain"
	"github.com/rodolfonobrega/audioscribe/internal/fault"
)

func testClip() audio.Clip {
	return audio.Clip{ID: "clip-1", WAV: audio.EncodeWAV(make([]byte, 320))}
}

func TestRemoteExecute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "  hello world  "})
	}))
	defer server.Close()

	provider := NewRemote(RemoteOptions{
		Name:    "groq-whisper",
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "whisper-large-v3",
	})
	require.Equal(t, "groq-whisper", provider.Name())

	text, err := provider.Execute(context.Background(), testClip())
	require.NoError(t, err)
	require.Equal(t, "hello world", text)
}

func TestRemoteExecuteTranslatesAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	provider := NewRemote(RemoteOptions{APIKey: "bad", BaseURL: server.URL, Model: "whisper-1"})
	_, err := provider.Execute(context.Background(), testClip())
	require.Error(t, err)

	deepest, ok := fault.Deepest(err)
	require.True(t, ok)
	require.Equal(t, fault.CodeAuth, deepest.Code)
	require.Equal(t, chain.ClassFallback, chain.Classify(err))
}

func TestRemoteExecuteTranslatesRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	provider := NewRemote(RemoteOptions{APIKey: "k", BaseURL: server.URL, Model: "whisper-1"})
	_, err := provider.Execute(context.Background(), testClip())
	require.Error(t, err)
	require.Equal(t, chain.ClassRetry, chain.Classify(err))
}

func TestRemoteNameDefaultsToModel(t *testing.T) {
	provider := NewRemote(RemoteOptions{Model: "whisper-1"})
	require.Equal(t, "whisper-1", provider.Name())
}

func TestRemoteHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer server.Close()

	provider := NewRemote(RemoteOptions{APIKey: "k", BaseURL: server.URL, Model: "whisper-1"})
	require.NoError(t, provider.HealthCheck(context.Background()))
}

func TestWhisperCPPHealthCheckMissingBinary(t *testing.T) {
	provider := NewWhisperCPP(WhisperCPPOptions{Binary: "audioscribe-no-such-binary"})
	err := provider.HealthCheck(context.Background())
	require.Error(t, err)

	deepest, ok := fault.Deepest(err)
	require.True(t, ok)
	require.Equal(t, fault.CodeNotFound, deepest.Code)
}

func TestWhisperCPPHealthCheckMissingModel(t *testing.T) {
	binDir := t.TempDir()
	writeFakeBinary(t, binDir)
	t.Setenv("PATH", binDir)

	provider := NewWhisperCPP(WhisperCPPOptions{Binary: "whisper-cli"})
	err := provider.HealthCheck(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "model path")
}

func TestWhisperCPPDefaults(t *testing.T) {
	provider := NewWhisperCPP(WhisperCPPOptions{})
	require.Equal(t, "whisper.cpp", provider.Name())
	require.Equal(t, "whisper-cli", provider.binary)
}

func TestNewChainRejectsUnknownKind(t *testing.T) {
	_, err := NewChain([]Spec{{Kind: "carrier-pigeon"}}, chain.DefaultConfig(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown kind")
}

func TestNewChainBuildsProvidersInOrder(t *testing.T) {
	specs := []Spec{
		{Name: "groq", Kind: KindOpenAI, Model: "whisper-large-v3"},
		{Name: "local", Kind: KindWhisperCPP, ModelPath: "/tmp/model.bin"},
	}
	c, err := NewChain(specs, chain.DefaultConfig(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, c.Stats().Providers)
}

func TestRemoteExecuteHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"late"}`))
	}))
	defer server.Close()

	provider := NewRemote(RemoteOptions{APIKey: "k", BaseURL: server.URL, Model: "whisper-1"})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := provider.Execute(ctx, testClip())
	require.Error(t, err)
}

func writeFakeBinary(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, "whisper-cli")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
}
