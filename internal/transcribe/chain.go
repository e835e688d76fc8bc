package transcribe

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rodolfonobrega/audioscribe/internal/audio"
	"github.com/rodolfonobrega/audioscribe/internal/chain"
)

// Provider kinds accepted in configuration.
const (
	KindOpenAI     = "openai"
	KindWhisperCPP = "whisper_cpp"
)

// Spec declares one link of the transcription chain, in priority order.
type Spec struct {
	Name     string
	Kind     string
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Prompt   string

	// whisper.cpp only.
	Binary    string
	ModelPath string
}

// NewChain assembles the configured transcription providers into a fallback
// chain. Blank transcripts count as failures so a silent provider cannot
// swallow a clip.
func NewChain(specs []Spec, cfg chain.Config, logger *slog.Logger) (*chain.Chain[audio.Clip, string], error) {
	providers := make([]chain.Provider[audio.Clip, string], 0, len(specs))
	for i, spec := range specs {
		switch spec.Kind {
		case KindOpenAI, "":
			providers = append(providers, NewRemote(RemoteOptions{
				Name:     spec.Name,
				APIKey:   spec.APIKey,
				BaseURL:  spec.BaseURL,
				Model:    spec.Model,
				Language: spec.Language,
				Prompt:   spec.Prompt,
			}))
		case KindWhisperCPP:
			providers = append(providers, NewWhisperCPP(WhisperCPPOptions{
				Name:      spec.Name,
				Binary:    spec.Binary,
				ModelPath: spec.ModelPath,
				Language:  spec.Language,
			}))
		default:
			return nil, fmt.Errorf("transcriber %d: unknown kind %q", i, spec.Kind)
		}
	}
	return chain.New("transcribe", providers, cfg, logger,
		chain.WithEmptyResult[audio.Clip, string](func(text string) bool {
			return strings.TrimSpace(text) == ""
		}))
}
