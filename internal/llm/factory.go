// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"fmt"
	"net/http"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// New creates the model client selected by cfg.Provider. The openai
// provider accepts a missing key when BaseURL points at a local
// OpenAI-compatible server.
func New(cfg types.AIConfig, client *http.Client) (Model, error) {
	switch cfg.Provider {
	case types.ProviderOpenAI:
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("openai provider requires an API key (set agent.api_key or .secrets/openai-api-key)")
		}
		return NewOpenAIModel(cfg.APIKey, cfg.BaseURL, cfg.Model), nil

	case types.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key (set agent.api_key or .secrets/anthropic-api-key)")
		}
		if client == nil {
			client = http.DefaultClient
		}
		m := &AnthropicModel{APIKey: cfg.APIKey, Model: cfg.Model, Client: client}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Provider)
	}
}
