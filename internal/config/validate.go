package config

import (
	"fmt"
	"time"
)

var knownHandlers = map[string]bool{
	"clipboard": true,
	"type":      true,
	"console":   true,
	"file":      true,
}

var knownTranscribeKinds = map[string]bool{
	"":            true,
	"openai":      true,
	"whisper_cpp": true,
}

var knownEnhanceKinds = map[string]bool{
	"":       true,
	"openai": true,
	"ollama": true,
}

// Validate normalizes the config in place and reports problems. Fatal
// problems return an error; recoverable ones are downgraded to warnings.
func Validate(cfg *Config) ([]string, error) {
	var warnings []string

	switch cfg.Hotkey.Mode {
	case "push_to_talk", "toggle":
	default:
		return warnings, fmt.Errorf("hotkey.mode must be push_to_talk or toggle, got %q", cfg.Hotkey.Mode)
	}
	if cfg.Hotkey.Key == "" {
		return warnings, fmt.Errorf("hotkey.key cannot be empty")
	}

	if !knownHandlers[cfg.Output.Handler] {
		warnings = append(warnings, fmt.Sprintf("unknown output handler %q, using console", cfg.Output.Handler))
		cfg.Output.Handler = "console"
	}
	if cfg.Output.Handler == "file" && cfg.Output.FilePath == "" {
		return warnings, fmt.Errorf("output.file_path is required for the file handler")
	}

	if len(cfg.Transcription.Providers) == 0 {
		return warnings, fmt.Errorf("no transcription providers configured (set transcription.providers or AUDIOSCRIBE_TRANSCRIPTION_MODELS)")
	}
	for i, p := range cfg.Transcription.Providers {
		if !knownTranscribeKinds[p.Kind] {
			return warnings, fmt.Errorf("transcription provider %d: unknown kind %q", i, p.Kind)
		}
		if p.Kind != "whisper_cpp" && p.Model == "" {
			return warnings, fmt.Errorf("transcription provider %d: model is required", i)
		}
		if p.Kind != "whisper_cpp" && p.APIKey == "" && p.BaseURL == "" {
			warnings = append(warnings, fmt.Sprintf("transcription provider %q has no api key", providerLabel(p, i)))
		}
	}
	normalizeChainPolicy(&cfg.Transcription.MaxRetries, &cfg.Transcription.BaseDelay, "transcription", &warnings)

	if cfg.Enhancement.Enabled && len(cfg.Enhancement.Providers) == 0 {
		warnings = append(warnings, "enhancement enabled but no providers configured, disabling")
		cfg.Enhancement.Enabled = false
	}
	for i, p := range cfg.Enhancement.Providers {
		if !knownEnhanceKinds[p.Kind] {
			return warnings, fmt.Errorf("enhancement provider %d: unknown kind %q", i, p.Kind)
		}
		if p.Model == "" {
			return warnings, fmt.Errorf("enhancement provider %d: model is required", i)
		}
	}
	normalizeChainPolicy(&cfg.Enhancement.MaxRetries, &cfg.Enhancement.BaseDelay, "enhancement", &warnings)

	return warnings, nil
}

func normalizeChainPolicy(maxRetries *int, baseDelay *time.Duration, stage string, warnings *[]string) {
	if *maxRetries < 1 {
		*warnings = append(*warnings, fmt.Sprintf("%s.max_retries must be at least 1, using %d", stage, DefaultMaxRetries))
		*maxRetries = DefaultMaxRetries
	}
	if *baseDelay <= 0 {
		*warnings = append(*warnings, fmt.Sprintf("%s.base_delay must be positive, using %s", stage, DefaultBaseDelay))
		*baseDelay = DefaultBaseDelay
	}
}

func providerLabel(p Provider, index int) string {
	if p.Name != "" {
		return p.Name
	}
	if p.Model != "" {
		return p.Model
	}
	return fmt.Sprintf("#%d", index)
}
