// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/internal/cache"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/internal/telemetry"
	"github.com/pdiddy/research-assistant/internal/tools"
	"github.com/pdiddy/research-assistant/internal/validate"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// modelTimeout bounds one model request, including generation.
const modelTimeout = 2 * time.Minute

// buildSources returns the enabled evidence sources, wrapped by the
// evidence cache when it is enabled. The returned func closes the cache.
func buildSources(c types.Config) ([]search.Source, func(), error) {
	sources := search.NewSources(c.Sources)
	if !c.Cache.Enabled {
		return sources, func() {}, nil
	}
	store, err := cache.Open(c.Cache)
	if err != nil {
		return nil, nil, err
	}
	return cache.Wrap(sources, store), func() { store.Close() }, nil
}

// buildOrchestrator wires the model, tool registry, validator, and sink
// from c. The returned func releases the evidence cache.
func buildOrchestrator(c types.Config, sink telemetry.Sink) (*agent.Orchestrator, func(), error) {
	model, err := llm.New(c.Agent.AIConfig, &http.Client{Timeout: modelTimeout})
	if err != nil {
		return nil, nil, err
	}

	validator, err := validate.ForPolicy(c.Agent.CitationPolicy, c.Agent.MinCitations)
	if err != nil {
		return nil, nil, err
	}

	sources, closeSources, err := buildSources(c)
	if err != nil {
		return nil, nil, err
	}
	registry, err := tools.FromSources(sources, c.Sources.ToolTimeout)
	if err != nil {
		closeSources()
		return nil, nil, fmt.Errorf("building tool registry: %w", err)
	}

	o := agent.New(model, registry,
		agent.WithValidator(validator),
		agent.WithTelemetry(sink),
		agent.WithMaxRetries(c.Agent.MaxRetries),
		agent.WithMaxTokens(c.Agent.MaxTokens),
	)
	return o, closeSources, nil
}

func usageLimits(c types.Config) types.UsageLimits {
	return types.UsageLimits{RequestLimit: c.Agent.RequestLimit}
}
