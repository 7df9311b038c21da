package fillin

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAICompatProvider implements Provider for any OpenAI-compatible API.
type OpenAICompatProvider struct {
	client       *openai.Client
	model        string
	providerName string
}

// OpenAICompatConfig holds configuration for an OpenAI-compatible provider.
type OpenAICompatConfig struct {
	ProviderName string
	APIKey       string
	BaseURL      string
	Model        string
	DefaultURL   string
	DefaultModel string
}

// NewOpenAICompatProvider creates a new OpenAI-compatible provider.
func NewOpenAICompatProvider(cfg OpenAICompatConfig) (*OpenAICompatProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = cfg.DefaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = cfg.DefaultURL
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAICompatProvider{
		client:       openai.NewClientWithConfig(config),
		model:        cfg.Model,
		providerName: cfg.ProviderName,
	}, nil
}

// Name returns the provider name.
func (p *OpenAICompatProvider) Name() string {
	return p.providerName
}

// Complete sends one system+user exchange and returns the raw response
// text. JSON output mode is requested so the fill-in schema parses without
// prose wrapping.
func (p *OpenAICompatProvider) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   1024,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", p.providerName, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s API returned no choices", p.providerName)
	}
	return resp.Choices[0].Message.Content, nil
}
