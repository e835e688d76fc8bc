package enhance

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rodolfonobrega/audioscribe/internal/chain"
)

// Provider kinds accepted in configuration.
const (
	KindOpenAI = "openai"
	KindOllama = "ollama"
)

// Spec declares one link of the enhancement chain, in priority order.
type Spec struct {
	Name         string
	Kind         string
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	Temperature  float64
}

// NewChain assembles the configured enhancement providers into a fallback
// chain. A model that answers with nothing counts as a failure.
func NewChain(specs []Spec, cfg chain.Config, logger *slog.Logger) (*chain.Chain[string, string], error) {
	providers := make([]chain.Provider[string, string], 0, len(specs))
	for i, spec := range specs {
		switch spec.Kind {
		case KindOpenAI, "":
			providers = append(providers, NewRemote(RemoteOptions{
				Name:         spec.Name,
				APIKey:       spec.APIKey,
				BaseURL:      spec.BaseURL,
				Model:        spec.Model,
				SystemPrompt: spec.SystemPrompt,
				Temperature:  float32(spec.Temperature),
			}))
		case KindOllama:
			providers = append(providers, NewOllama(OllamaOptions{
				Name:         spec.Name,
				BaseURL:      spec.BaseURL,
				Model:        spec.Model,
				SystemPrompt: spec.SystemPrompt,
				Temperature:  spec.Temperature,
			}))
		default:
			return nil, fmt.Errorf("enhancer %d: unknown kind %q", i, spec.Kind)
		}
	}
	return chain.New("enhance", providers, cfg, logger,
		chain.WithEmptyResult[string, string](func(text string) bool {
			return strings.TrimSpace(text) == ""
		}))
}
