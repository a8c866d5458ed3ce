package llm

import (
	"context"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAI-compatible chat backend. Ollama is reached
// through its /v1 compatibility endpoint with the same client.
type OpenAIConfig struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	// RequireKey marks hosted backends that cannot be called without a key.
	RequireKey bool
}

type OpenAIProvider struct {
	cfg    OpenAIConfig
	client *openai.Client
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Name == "" {
		cfg.Name = ProviderOpenAI
	}
	return &OpenAIProvider{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

// NewOllamaProvider points the OpenAI client at an Ollama host.
func NewOllamaProvider(baseURL, model string) *OpenAIProvider {
	url := strings.TrimRight(baseURL, "/")
	if url != "" && !strings.HasSuffix(url, "/v1") {
		url += "/v1"
	}
	return NewOpenAIProvider(OpenAIConfig{
		Name:    ProviderOllama,
		APIKey:  "ollama",
		BaseURL: url,
		Model:   model,
	})
}

func (p *OpenAIProvider) Name() string { return p.cfg.Name }

func (p *OpenAIProvider) Available() bool {
	if p.cfg.RequireKey {
		return p.cfg.APIKey != ""
	}
	return p.cfg.BaseURL != ""
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chatReq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  msgs,
		MaxTokens: req.MaxOutputTokens,
	}
	if req.Temperature != nil {
		chatReq.Temperature = *req.Temperature
		// go-openai drops a zero temperature via omitempty.
		if chatReq.Temperature == 0 {
			chatReq.Temperature = math.SmallestNonzeroFloat32
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", p.cfg.Name, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
