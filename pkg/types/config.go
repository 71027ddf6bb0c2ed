// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout for a single request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429/503 responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// PubMedConfig configures the NCBI E-utilities literature source.
type PubMedConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// APIKey is an optional NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Email is sent as the E-utilities email parameter.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// MaxResults caps the number of articles returned per search (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// TrialsConfig configures the ClinicalTrials.gov source.
type TrialsConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	MaxResults int  `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// MaxOutcomes is the number of trailing primary outcomes kept per study (default 3).
	MaxOutcomes int `json:"max_outcomes" yaml:"max_outcomes" mapstructure:"max_outcomes"`
}

// HealthTopicsConfig configures the MedlinePlus health topics source.
type HealthTopicsConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	MaxResults int  `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// SourcesConfig groups the evidence source settings.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	PubMed       PubMedConfig       `json:"pubmed" yaml:"pubmed" mapstructure:"pubmed"`
	Trials       TrialsConfig       `json:"trials" yaml:"trials" mapstructure:"trials"`
	HealthTopics HealthTopicsConfig `json:"health_topics" yaml:"health_topics" mapstructure:"health_topics"`

	// ToolTimeout bounds a single tool invocation. A timed-out source is
	// reported to the model as unavailable (default 30s).
	ToolTimeout time.Duration `json:"tool_timeout" yaml:"tool_timeout" mapstructure:"tool_timeout"`
}

// ModelProvider identifies the language model API.
type ModelProvider string

const (
	ProviderOpenAI    ModelProvider = "openai"
	ProviderAnthropic ModelProvider = "anthropic"
)

// CitationPolicy names a built-in answer validation policy.
type CitationPolicy string

const (
	// PolicyRequire rejects answers without citations.
	PolicyRequire CitationPolicy = "require"
	// PolicyStrict additionally rejects malformed citations and inline
	// references with no matching citation entry.
	PolicyStrict CitationPolicy = "strict"
	// PolicyNone accepts every answer.
	PolicyNone CitationPolicy = "none"
)

// AIConfig holds settings for the language model backing the agent.
type AIConfig struct {
	// Provider selects the model API: openai or anthropic.
	Provider ModelProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gpt-4o-mini", "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the API endpoint. For the openai provider this
	// allows any OpenAI-compatible server (Gemini, Ollama, vLLM).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxTokens caps the tokens generated per model request (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AgentConfig holds settings for the agent orchestrator.
type AgentConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// MaxRetries is the number of times a rejected answer may be retried
	// before the query fails (default 4).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestLimit caps model requests per query, tool rounds included (default 10).
	RequestLimit int `json:"request_limit" yaml:"request_limit" mapstructure:"request_limit"`

	// CitationPolicy selects the answer validator: require, strict, or none.
	CitationPolicy CitationPolicy `json:"citation_policy" yaml:"citation_policy" mapstructure:"citation_policy"`

	// MinCitations raises the minimum citation count above one when set.
	MinCitations int `json:"min_citations" yaml:"min_citations" mapstructure:"min_citations"`
}

// CacheConfig configures the evidence cache.
type CacheConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file. Empty keeps the cache in memory
	// for the lifetime of the process.
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`

	// TTL is how long cached evidence stays fresh (default 1h).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// ServerConfig configures the HTTP chat API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowAll permits all CORS origins (development mode).
	AllowAll bool `json:"allow_all" yaml:"allow_all" mapstructure:"allow_all"`

	// RequestTimeout bounds a single chat request end to end (default 2m).
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all component configurations.
type Config struct {
	Sources SourcesConfig `json:"sources" yaml:"sources" mapstructure:"sources"`
	Agent   AgentConfig   `json:"agent" yaml:"agent" mapstructure:"agent"`
	Cache   CacheConfig   `json:"cache" yaml:"cache" mapstructure:"cache"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when no file or
// environment override is present.
func DefaultConfig() Config {
	return Config{
		Sources: SourcesConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    20 * time.Second,
				UserAgent:  "research-assistant/0.1",
				MaxRetries: 3,
			},
			PubMed:       PubMedConfig{Enabled: true, MaxResults: 5},
			Trials:       TrialsConfig{Enabled: true, MaxResults: 5, MaxOutcomes: 3},
			HealthTopics: HealthTopicsConfig{Enabled: true, MaxResults: 5},
			ToolTimeout:  30 * time.Second,
		},
		Agent: AgentConfig{
			AIConfig: AIConfig{
				Provider:  ProviderOpenAI,
				Model:     "gpt-4o-mini",
				MaxTokens: 4096,
			},
			MaxRetries:     4,
			RequestLimit:   10,
			CitationPolicy: PolicyRequire,
		},
		Cache: CacheConfig{Enabled: true, TTL: time.Hour},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 2 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

var validProviders = map[ModelProvider]bool{
	ProviderOpenAI:    true,
	ProviderAnthropic: true,
}

var validPolicies = map[CitationPolicy]bool{
	PolicyRequire: true,
	PolicyStrict:  true,
	PolicyNone:    true,
}

// Validate checks that the configuration contains usable values.
func (c Config) Validate() error {
	if !validProviders[c.Agent.Provider] {
		return fmt.Errorf("invalid agent provider %q: must be one of openai, anthropic", c.Agent.Provider)
	}
	if c.Agent.Model == "" {
		return fmt.Errorf("agent model is required")
	}
	if c.Agent.RequestLimit <= 0 {
		return fmt.Errorf("agent request_limit must be positive, got %d", c.Agent.RequestLimit)
	}
	if c.Agent.MaxRetries < 0 {
		return fmt.Errorf("agent max_retries must be non-negative")
	}
	if !validPolicies[c.Agent.CitationPolicy] {
		return fmt.Errorf("invalid citation_policy %q: must be one of require, strict, none", c.Agent.CitationPolicy)
	}
	if !c.Sources.PubMed.Enabled && !c.Sources.Trials.Enabled && !c.Sources.HealthTopics.Enabled {
		return fmt.Errorf("at least one evidence source must be enabled")
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive when the cache is enabled")
	}
	return nil
}
