// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// setDefaults registers every config key with v. AutomaticEnv only
// resolves keys viper already knows about, so this is also what makes
// RESEARCH_ASSISTANT_* variables visible to Unmarshal.
func setDefaults(v *viper.Viper, d types.Config) {
	defaults := map[string]any{
		"sources.timeout":                   d.Sources.Timeout,
		"sources.user_agent":                d.Sources.UserAgent,
		"sources.max_retries":               d.Sources.MaxRetries,
		"sources.tool_timeout":              d.Sources.ToolTimeout,
		"sources.pubmed.enabled":            d.Sources.PubMed.Enabled,
		"sources.pubmed.api_key":            d.Sources.PubMed.APIKey,
		"sources.pubmed.email":              d.Sources.PubMed.Email,
		"sources.pubmed.max_results":        d.Sources.PubMed.MaxResults,
		"sources.trials.enabled":            d.Sources.Trials.Enabled,
		"sources.trials.max_results":        d.Sources.Trials.MaxResults,
		"sources.trials.max_outcomes":       d.Sources.Trials.MaxOutcomes,
		"sources.health_topics.enabled":     d.Sources.HealthTopics.Enabled,
		"sources.health_topics.max_results": d.Sources.HealthTopics.MaxResults,

		"agent.provider":        string(d.Agent.Provider),
		"agent.model":           d.Agent.Model,
		"agent.api_key":         d.Agent.APIKey,
		"agent.base_url":        d.Agent.BaseURL,
		"agent.max_tokens":      d.Agent.MaxTokens,
		"agent.max_retries":     d.Agent.MaxRetries,
		"agent.request_limit":   d.Agent.RequestLimit,
		"agent.citation_policy": string(d.Agent.CitationPolicy),
		"agent.min_citations":   d.Agent.MinCitations,

		"cache.enabled": d.Cache.Enabled,
		"cache.path":    d.Cache.Path,
		"cache.ttl":     d.Cache.TTL,

		"server.addr":            d.Server.Addr,
		"server.allow_all":       d.Server.AllowAll,
		"server.request_timeout": d.Server.RequestTimeout,

		"log.level":  d.Log.Level,
		"log.format": d.Log.Format,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// loadConfig resolves the configuration from defaults, the config file,
// environment variables, and bound flags, in increasing precedence.
func loadConfig() (types.Config, error) {
	c := types.DefaultConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return c, nil
}
