// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools exposes evidence sources as named tools the model can call.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var (
	// ErrUnknownTool is returned for a tool name outside the registered set.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned when a tool call has no usable keyword.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Name identifies a tool. The set of names is closed.
type Name string

const (
	SearchPubMed         Name = "search_pubmed"
	SearchClinicalTrials Name = "search_clinical_trials"
	SearchHealthTopics   Name = "search_health_topics"
)

// DefaultTimeout bounds one invocation when the registry has no timeout set.
const DefaultTimeout = 30 * time.Second

// KeywordParam is the single argument every tool takes.
const KeywordParam = "keyword"

var defaultDescriptions = map[Name]string{
	SearchPubMed: "Search PubMed for peer-reviewed biomedical articles related to the keyword. " +
		"Returns title, abstract, authors and URL for up to five articles.",
	SearchClinicalTrials: "Search ClinicalTrials.gov for completed clinical trials with posted results related to the keyword. " +
		"Returns title, brief summary, primary outcomes and URL for up to five studies.",
	SearchHealthTopics: "Search MedlinePlus for consumer health topics related to the keyword. " +
		"Returns title, plain-language summary and URL for up to five topics.",
}

var sourceTools = map[string]Name{
	"pubmed":          SearchPubMed,
	"clinical_trials": SearchClinicalTrials,
	"health_topics":   SearchHealthTopics,
}

// Valid reports whether n belongs to the closed set of tool names.
func (n Name) Valid() bool {
	_, ok := defaultDescriptions[n]
	return ok
}

// ForSource returns the tool name that serves a source, by source name.
func ForSource(sourceName string) (Name, bool) {
	n, ok := sourceTools[sourceName]
	return n, ok
}

// Descriptor is a registered tool. It is immutable once registered.
type Descriptor struct {
	Name        Name
	Description string
	source      search.Source
}

// Parameters returns the JSON schema of the tool arguments.
func (d Descriptor) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			KeywordParam: map[string]any{
				"type":        "string",
				"description": "Short search keyword distilled from the user's question, e.g. \"hairfall\" or \"diabetes treatment\".",
			},
		},
		"required": []string{KeywordParam},
	}
}

// Registry maps tool names to sources. Register everything before use;
// after that a Registry is read-only and safe for concurrent Invoke calls.
type Registry struct {
	tools   []Descriptor
	index   map[Name]int
	timeout time.Duration
}

// NewRegistry returns an empty registry whose invocations time out after
// timeout (DefaultTimeout when zero).
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Registry{index: make(map[Name]int), timeout: timeout}
}

// FromSources registers one tool per source, in source order, using the
// default descriptions.
func FromSources(sources []search.Source, timeout time.Duration) (*Registry, error) {
	r := NewRegistry(timeout)
	for _, s := range sources {
		name, ok := ForSource(s.Name())
		if !ok {
			return nil, fmt.Errorf("no tool serves source %q", s.Name())
		}
		if err := r.Register(name, "", s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. An empty description uses the default for name.
// Registration order is the order List reports.
func (r *Registry) Register(name Name, description string, src search.Source) error {
	if !name.Valid() {
		return fmt.Errorf("registering %q: %w", name, ErrUnknownTool)
	}
	if _, dup := r.index[name]; dup {
		return fmt.Errorf("tool %q already registered", name)
	}
	if src == nil {
		return fmt.Errorf("tool %q has no source", name)
	}
	if description == "" {
		description = defaultDescriptions[name]
	}
	r.index[name] = len(r.tools)
	r.tools = append(r.tools, Descriptor{Name: name, Description: description, source: src})
	return nil
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.tools))
	copy(out, r.tools)
	return out
}

// Lookup resolves a model-supplied name to a registered descriptor.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	i, ok := r.index[Name(name)]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return r.tools[i], nil
}

// Timeout returns the per-invocation timeout.
func (r *Registry) Timeout() time.Duration { return r.timeout }

// Invoke runs the named tool with keyword under the registry timeout.
//
// Errors: ErrUnknownTool for unregistered names, ErrInvalidArguments for a
// blank keyword, the parent context's error when ctx is done, and
// otherwise an error wrapping search.ErrSourceUnavailable. A timed-out
// source counts as unavailable.
func (r *Registry) Invoke(ctx context.Context, name, keyword string) ([]types.Evidence, error) {
	d, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%s: %w: %s must not be empty", name, ErrInvalidArguments, KeywordParam)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results, err := d.source.Search(callCtx, keyword)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, search.ErrSourceUnavailable) {
			return nil, err
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w: timed out after %s", name, search.ErrSourceUnavailable, r.timeout)
		}
		return nil, fmt.Errorf("%s: %w: %w", name, search.ErrSourceUnavailable, err)
	}
	if results == nil {
		results = []types.Evidence{}
	}
	return results, nil
}
