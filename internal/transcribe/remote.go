// Package transcribe turns recorded clips into raw text through a fallback
// chain of speech-to-text providers.
package transcribe

import (
	"bytes"
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rodolfonobrega/audioscribe/internal/audio"
	"github.com/rodolfonobrega/audioscribe/internal/fault"
)

// RemoteOptions configures one OpenAI-compatible transcription endpoint.
// BaseURL covers Groq, OpenAI, and local servers exposing the same API.
type RemoteOptions struct {
	Name     string
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Prompt   string
}

// Remote transcribes clips against an OpenAI-compatible audio endpoint.
type Remote struct {
	name     string
	model    string
	language string
	prompt   string
	client   *openai.Client
}

func NewRemote(opts RemoteOptions) *Remote {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	name := opts.Name
	if name == "" {
		name = opts.Model
	}
	return &Remote{
		name:     name,
		model:    opts.Model,
		language: opts.Language,
		prompt:   opts.Prompt,
		client:   openai.NewClientWithConfig(cfg),
	}
}

func (r *Remote) Name() string { return r.name }

func (r *Remote) Execute(ctx context.Context, clip audio.Clip) (string, error) {
	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    r.model,
		FilePath: clip.ID + ".wav",
		Reader:   bytes.NewReader(clip.WAV),
		Language: r.language,
		Prompt:   r.prompt,
	})
	if err != nil {
		return "", fault.FromAPI("transcribe via "+r.name, err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// HealthCheck probes the endpoint with a model listing, which every
// OpenAI-compatible server supports and which validates the key.
func (r *Remote) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fault.FromAPI("probe "+r.name, err)
	}
	return nil
}
