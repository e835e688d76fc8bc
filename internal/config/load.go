package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPath resolves the XDG config file location.
func DefaultPath() (string, error) {
	configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "audioscribe", "config.yaml"), nil
}

// Load resolves configuration: .env bootstrap, YAML file (explicit path or
// XDG default), environment overrides, then validation. A missing file is
// not an error; defaults apply.
func Load(explicitPath string) (Loaded, error) {
	loadDotenv()

	path := explicitPath
	if path == "" {
		resolved, err := DefaultPath()
		if err != nil {
			return Loaded{}, err
		}
		path = resolved
	}

	loaded := Loaded{Path: path, Config: DefaultConfig()}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	switch err := v.ReadInConfig(); {
	case err == nil:
		loaded.Exists = true
		if err := v.Unmarshal(&loaded.Config); err != nil {
			return Loaded{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case isNotExist(err):
		if explicitPath != "" {
			return Loaded{}, fmt.Errorf("config file %s does not exist", path)
		}
	default:
		return Loaded{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(&loaded.Config)
	fillProviderKeys(&loaded.Config)

	warnings, err := Validate(&loaded.Config)
	loaded.Warnings = warnings
	if err != nil {
		return loaded, err
	}
	return loaded, nil
}

// loadDotenv pulls in .env from the working directory and the config dir.
// Absence is fine; the environment always wins over .env values.
func loadDotenv() {
	_ = godotenv.Load()
	if path, err := DefaultPath(); err == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))
	}
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// applyEnvOverrides maps flat environment variables onto the config. Model
// chains accept comma-separated shorthand lists, mirroring the api_key
// convention of the hosted providers.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUDIOSCRIBE_HOTKEY_MODE"); v != "" {
		cfg.Hotkey.Mode = v
	}
	if v := os.Getenv("AUDIOSCRIBE_HOTKEY_KEY"); v != "" {
		cfg.Hotkey.Key = v
	}
	if v := os.Getenv("AUDIOSCRIBE_AUDIO_DEVICE"); v != "" {
		cfg.Audio.Device = v
	}
	if v := os.Getenv("AUDIOSCRIBE_OUTPUT_HANDLER"); v != "" {
		cfg.Output.Handler = v
	}
	if v := os.Getenv("AUDIOSCRIBE_TRANSCRIPTION_MODELS"); v != "" {
		cfg.Transcription.Providers = parseModelList(v)
	}
	if v := os.Getenv("AUDIOSCRIBE_ENHANCEMENT_MODELS"); v != "" {
		cfg.Enhancement.Providers = parseModelList(v)
	}
	if v := os.Getenv("AUDIOSCRIBE_ENHANCEMENT_ENABLED"); v != "" {
		cfg.Enhancement.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

// parseModelList expands shorthand like
// "groq/whisper-large-v3,openai/whisper-1,whisper_cpp" into provider specs.
func parseModelList(list string) []Provider {
	var providers []Provider
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		providers = append(providers, providerFromShorthand(entry))
	}
	return providers
}

func providerFromShorthand(entry string) Provider {
	prefix, model, found := strings.Cut(entry, "/")
	if !found {
		if entry == "whisper_cpp" || entry == "whispercpp" {
			return Provider{
				Name:      "whisper.cpp",
				Kind:      "whisper_cpp",
				Binary:    os.Getenv("WHISPER_CPP_BINARY"),
				ModelPath: os.Getenv("WHISPER_CPP_MODEL"),
			}
		}
		return Provider{Name: entry, Kind: "openai", Model: entry}
	}

	switch prefix {
	case "groq":
		return Provider{Name: entry, Kind: "openai", Model: model, BaseURL: groqBaseURL}
	case "openai":
		return Provider{Name: entry, Kind: "openai", Model: model}
	case "ollama":
		return Provider{Name: entry, Kind: "ollama", Model: model, BaseURL: os.Getenv("OLLAMA_BASE_URL")}
	default:
		return Provider{Name: entry, Kind: "openai", Model: model}
	}
}

// fillProviderKeys resolves api_key values: ${VAR} references expand, and
// blank keys fall back to the conventional variable for the endpoint.
func fillProviderKeys(cfg *Config) {
	fill := func(providers []Provider) {
		for i := range providers {
			p := &providers[i]
			if strings.Contains(p.APIKey, "$") {
				p.APIKey = os.ExpandEnv(p.APIKey)
			}
			if p.APIKey != "" || p.Kind == "whisper_cpp" || p.Kind == "ollama" {
				continue
			}
			if strings.Contains(p.BaseURL, "api.groq.com") {
				p.APIKey = os.Getenv("GROQ_API_KEY")
			} else if p.BaseURL == "" {
				p.APIKey = os.Getenv("OPENAI_API_KEY")
			}
		}
	}
	fill(cfg.Transcription.Providers)
	fill(cfg.Enhancement.Providers)
}
