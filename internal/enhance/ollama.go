package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rodolfonobrega/audioscribe/internal/fault"
)

// OllamaOptions configures a local Ollama daemon as an enhancement link.
type OllamaOptions struct {
	Name         string
	BaseURL      string
	Model        string
	SystemPrompt string
	Temperature  float64
	Timeout      time.Duration
}

// Ollama talks to the native Ollama chat API, which differs from the
// OpenAI-compatible surface in both paths and payload shape.
type Ollama struct {
	name         string
	baseURL      string
	model        string
	systemPrompt string
	temperature  float64
	httpClient   *http.Client
}

func NewOllama(opts OllamaOptions) *Ollama {
	name := opts.Name
	if name == "" {
		name = "ollama/" + opts.Model
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	prompt := opts.SystemPrompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Ollama{
		name:         name,
		baseURL:      baseURL,
		model:        opts.Model,
		systemPrompt: prompt,
		temperature:  opts.Temperature,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (o *Ollama) Name() string { return o.name }

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  map[string]any      `json:"options,omitempty"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Error   string            `json:"error,omitempty"`
}

func (o *Ollama) Execute(ctx context.Context, transcript string) (string, error) {
	payload := ollamaChatRequest{
		Model: o.model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: o.systemPrompt},
			{Role: "user", Content: transcript},
		},
		Stream: false,
	}
	if o.temperature > 0 {
		payload.Options = map[string]any{"temperature": o.temperature}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fault.FromAPI("enhance via "+o.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fault.Wrap(fault.CodeConnection, o.name+": read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := strings.TrimSpace(string(raw))
		if code, ok := fault.CodeForStatus(resp.StatusCode); ok {
			return "", fault.New(code, fmt.Sprintf("%s: %s", o.name, detail))
		}
		return "", fault.New(fault.CodeInternal, fmt.Sprintf("%s: unexpected status %d", o.name, resp.StatusCode))
	}

	var parsed ollamaChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fault.Wrap(fault.CodeInternal, o.name+": decode response", err)
	}
	if parsed.Error != "" {
		return "", fault.New(fault.CodeInternal, o.name+": "+parsed.Error)
	}
	return strings.TrimSpace(parsed.Message.Content), nil
}

// HealthCheck pings the daemon's tag listing, which also confirms the model
// store is readable.
func (o *Ollama) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("build ollama probe: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fault.FromAPI("probe "+o.name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fault.New(fault.CodeUnavailable, fmt.Sprintf("%s: probe status %d", o.name, resp.StatusCode))
	}
	return nil
}
