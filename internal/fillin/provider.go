package fillin

import "strings"

// ProviderConfig selects and configures the generation backend.
type ProviderConfig struct {
	Type    string
	APIKey  string
	BaseURL string
	Model   string
}

// NewProvider builds a Provider from config. Unknown types are treated as
// OpenAI-compatible endpoints, which covers most hosted backends.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "claude", "anthropic":
		return NewClaudeProvider(ClaudeConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case "openai", "":
		return NewOpenAICompatProvider(OpenAICompatConfig{
			ProviderName: "openai",
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			DefaultURL:   "https://api.openai.com/v1",
			DefaultModel: "gpt-4o-mini",
		})
	default:
		return NewOpenAICompatProvider(OpenAICompatConfig{
			ProviderName: cfg.Type,
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
		})
	}
}
