package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AUDIOSCRIBE_HOTKEY_MODE", "AUDIOSCRIBE_HOTKEY_KEY",
		"AUDIOSCRIBE_AUDIO_DEVICE", "AUDIOSCRIBE_OUTPUT_HANDLER",
		"AUDIOSCRIBE_TRANSCRIPTION_MODELS", "AUDIOSCRIBE_ENHANCEMENT_MODELS",
		"AUDIOSCRIBE_ENHANCEMENT_ENABLED",
		"GROQ_API_KEY", "OPENAI_API_KEY", "OLLAMA_BASE_URL",
		"WHISPER_CPP_BINARY", "WHISPER_CPP_MODEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
hotkey:
  mode: toggle
  key: f12
audio:
  device: yeti
transcription:
  max_retries: 3
  base_delay: 500ms
  providers:
    - name: groq
      kind: openai
      model: whisper-large-v3
      base_url: https://api.groq.com/openai/v1
      api_key: key-in-file
    - kind: whisper_cpp
      model_path: /models/ggml-base.bin
enhancement:
  enabled: true
  providers:
    - name: gpt
      kind: openai
      model: gpt-4o-mini
      api_key: other-key
output:
  handler: type
`)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)

	cfg := loaded.Config
	require.Equal(t, "toggle", cfg.Hotkey.Mode)
	require.Equal(t, "f12", cfg.Hotkey.Key)
	require.Equal(t, "yeti", cfg.Audio.Device)
	require.Equal(t, 3, cfg.Transcription.MaxRetries)
	require.Equal(t, 500*time.Millisecond, cfg.Transcription.BaseDelay)
	require.Len(t, cfg.Transcription.Providers, 2)
	require.Equal(t, "key-in-file", cfg.Transcription.Providers[0].APIKey)
	require.Equal(t, "whisper_cpp", cfg.Transcription.Providers[1].Kind)
	require.True(t, cfg.Enhancement.Enabled)
	require.Equal(t, "type", cfg.Output.Handler)
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUDIOSCRIBE_TRANSCRIPTION_MODELS", "groq/whisper-large-v3")

	loaded, err := Load("")
	require.NoError(t, err)
	require.False(t, loaded.Exists)
	require.Equal(t, "push_to_talk", loaded.Config.Hotkey.Mode)
	require.Equal(t, "clipboard", loaded.Config.Output.Handler)
	require.Equal(t, DefaultMaxRetries, loaded.Config.Transcription.MaxRetries)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestEnvModelListOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUDIOSCRIBE_TRANSCRIPTION_MODELS", "groq/whisper-large-v3, openai/whisper-1,whisper_cpp")
	t.Setenv("GROQ_API_KEY", "gk")
	t.Setenv("OPENAI_API_KEY", "ok")
	t.Setenv("WHISPER_CPP_MODEL", "/models/ggml.bin")

	loaded, err := Load("")
	require.NoError(t, err)

	providers := loaded.Config.Transcription.Providers
	require.Len(t, providers, 3)

	require.Equal(t, "groq/whisper-large-v3", providers[0].Name)
	require.Equal(t, "openai", providers[0].Kind)
	require.Equal(t, "whisper-large-v3", providers[0].Model)
	require.Equal(t, groqBaseURL, providers[0].BaseURL)
	require.Equal(t, "gk", providers[0].APIKey)

	require.Equal(t, "whisper-1", providers[1].Model)
	require.Equal(t, "ok", providers[1].APIKey)

	require.Equal(t, "whisper_cpp", providers[2].Kind)
	require.Equal(t, "/models/ggml.bin", providers[2].ModelPath)
}

func TestEnvEnhancementModels(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUDIOSCRIBE_TRANSCRIPTION_MODELS", "openai/whisper-1")
	t.Setenv("AUDIOSCRIBE_ENHANCEMENT_MODELS", "openai/gpt-4o-mini,ollama/llama3.2")
	t.Setenv("OPENAI_API_KEY", "ok")

	loaded, err := Load("")
	require.NoError(t, err)

	providers := loaded.Config.Enhancement.Providers
	require.Len(t, providers, 2)
	require.Equal(t, "openai", providers[0].Kind)
	require.Equal(t, "ollama", providers[1].Kind)
	require.Equal(t, "llama3.2", providers[1].Model)
}

func TestAPIKeyExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("MY_SECRET", "expanded-key")
	path := writeConfig(t, `
transcription:
  providers:
    - kind: openai
      model: whisper-1
      api_key: ${MY_SECRET}
`)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "expanded-key", loaded.Config.Transcription.Providers[0].APIKey)
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hotkey.Mode = "hold"
	cfg.Transcription.Providers = []Provider{{Kind: "openai", Model: "whisper-1"}}

	_, err := Validate(&cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "hotkey.mode")
}

func TestValidateRequiresTranscriptionProviders(t *testing.T) {
	cfg := DefaultConfig()
	_, err := Validate(&cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "transcription providers")
}

func TestValidateUnknownHandlerDowngrades(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Handler = "telegraph"
	cfg.Transcription.Providers = []Provider{{Kind: "openai", Model: "whisper-1", APIKey: "k"}}
	cfg.Enhancement.Enabled = false

	warnings, err := Validate(&cfg)
	require.NoError(t, err)
	require.Equal(t, "console", cfg.Output.Handler)
	require.NotEmpty(t, warnings)
}

func TestValidateDisablesEnhancementWithoutProviders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transcription.Providers = []Provider{{Kind: "openai", Model: "whisper-1", APIKey: "k"}}

	warnings, err := Validate(&cfg)
	require.NoError(t, err)
	require.False(t, cfg.Enhancement.Enabled)
	require.NotEmpty(t, warnings)
}

func TestValidateNormalizesChainPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transcription.Providers = []Provider{{Kind: "openai", Model: "whisper-1", APIKey: "k"}}
	cfg.Enhancement.Enabled = false
	cfg.Transcription.MaxRetries = 0
	cfg.Transcription.BaseDelay = -time.Second

	warnings, err := Validate(&cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultMaxRetries, cfg.Transcription.MaxRetries)
	require.Equal(t, DefaultBaseDelay, cfg.Transcription.BaseDelay)
	require.Len(t, warnings, 2)
}

func TestDefaultPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	path, err := DefaultPath()
	require.NoError(t, err)
	require.Equal(t, "/tmp/xdg-test/audioscribe/config.yaml", path)
}
