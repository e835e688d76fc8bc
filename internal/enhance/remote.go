// Package enhance polishes raw transcripts through a fallback chain of
// language model providers. When every provider fails the caller delivers
// the raw transcript instead.
package enhance

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rodolfonobrega/audioscribe/internal/fault"
)

// DefaultSystemPrompt is used when the configuration does not override it.
const DefaultSystemPrompt = "You clean up dictated text. Fix punctuation, " +
	"capitalization, and obvious transcription mistakes. Keep the speaker's " +
	"wording and meaning intact. Reply with the corrected text only, no " +
	"commentary."

// RemoteOptions configures one OpenAI-compatible chat endpoint.
type RemoteOptions struct {
	Name         string
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	Temperature  float32
}

// Remote enhances transcripts via an OpenAI-compatible chat completion API.
type Remote struct {
	name         string
	model        string
	systemPrompt string
	temperature  float32
	client       *openai.Client
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
	prompt := opts.SystemPrompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	return &Remote{
		name:         name,
		model:        opts.Model,
		systemPrompt: prompt,
		temperature:  opts.Temperature,
		client:       openai.NewClientWithConfig(cfg),
	}
}

func (r *Remote) Name() string { return r.name }

func (r *Remote) Execute(ctx context.Context, transcript string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: r.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: r.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
	})
	if err != nil {
		return "", fault.FromAPI("enhance via "+r.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fault.New(fault.CodeInternal, r.name+" returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (r *Remote) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fault.FromAPI("probe "+r.name, err)
	}
	return nil
}
