package session

import (
	"fmt"
	"log/slog"

	"github.com/rodolfonobrega/audioscribe/internal/audio"
	"github.com/rodolfonobrega/audioscribe/internal/chain"
	"github.com/rodolfonobrega/audioscribe/internal/config"
	"github.com/rodolfonobrega/audioscribe/internal/enhance"
	"github.com/rodolfonobrega/audioscribe/internal/output"
	"github.com/rodolfonobrega/audioscribe/internal/transcribe"
)

// BuildTranscriber converts configured providers into the transcription chain.
func BuildTranscriber(cfg config.Config, logger *slog.Logger) (*chain.Chain[audio.Clip, string], error) {
	specs := make([]transcribe.Spec, 0, len(cfg.Transcription.Providers))
	for _, p := range cfg.Transcription.Providers {
		specs = append(specs, transcribe.Spec{
			Name:      p.Name,
			Kind:      p.Kind,
			APIKey:    p.APIKey,
			BaseURL:   p.BaseURL,
			Model:     p.Model,
			Language:  p.Language,
			Prompt:    p.Prompt,
			Binary:    p.Binary,
			ModelPath: p.ModelPath,
		})
	}
	c, err := transcribe.NewChain(specs, chain.Config{
		MaxRetries: cfg.Transcription.MaxRetries,
		BaseDelay:  cfg.Transcription.BaseDelay,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build transcription chain: %w", err)
	}
	return c, nil
}

// BuildEnhancer converts configured providers into the enhancement chain.
// Returns nil when enhancement is disabled.
func BuildEnhancer(cfg config.Config, logger *slog.Logger) (*chain.Chain[string, string], error) {
	if !cfg.Enhancement.Enabled {
		return nil, nil
	}
	specs := make([]enhance.Spec, 0, len(cfg.Enhancement.Providers))
	for _, p := range cfg.Enhancement.Providers {
		specs = append(specs, enhance.Spec{
			Name:         p.Name,
			Kind:         p.Kind,
			APIKey:       p.APIKey,
			BaseURL:      p.BaseURL,
			Model:        p.Model,
			SystemPrompt: p.SystemPrompt,
			Temperature:  p.Temperature,
		})
	}
	c, err := enhance.NewChain(specs, chain.Config{
		MaxRetries: cfg.Enhancement.MaxRetries,
		BaseDelay:  cfg.Enhancement.BaseDelay,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build enhancement chain: %w", err)
	}
	return c, nil
}

// buildHandler resolves the output sink, falling back to console when the
// configured sink cannot be constructed.
func buildHandler(cfg config.Config, logger *slog.Logger) output.Handler {
	handler, err := output.ForName(cfg.Output.Handler, output.Options{
		ClipboardArgv: cfg.Output.ClipboardArgv,
		TypeArgv:      cfg.Output.TypeArgv,
		FilePath:      cfg.Output.FilePath,
	})
	if err != nil {
		if logger != nil {
			logger.Warn("output handler unavailable, using console", "handler", cfg.Output.Handler, "error", err.Error())
		}
		return output.NewConsole(nil)
	}
	return handler
}
