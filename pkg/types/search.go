// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research assistant:
// evidence records returned by knowledge sources, the conversation state
// threaded through the agent, and component configuration.
package types

// Evidence is one normalized record from an external knowledge source.
// Sources never emit an Evidence with an empty Title or URL; such records
// cannot be cited.
type Evidence struct {
	// Title is the record title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Summary is the abstract, brief summary, or topic text. Empty when
	// the source has none.
	Summary string `json:"summary" yaml:"summary"`

	// URL is the canonical reference link.
	URL string `json:"url" yaml:"url"`

	// Authors lists authors in source order. Nil for non-literature sources.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Extra carries source-specific structured fields (e.g. trial outcomes).
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`

	// Source identifies which source produced the record (e.g. "pubmed").
	Source string `json:"source" yaml:"source"`
}

// Citable reports whether the record has the fields a citation needs.
func (e Evidence) Citable() bool {
	return e.Title != "" && e.URL != ""
}

// SearchResponse is the structured answer the model produces: a narrative
// with inline [n] markers and the matching citation lines.
type SearchResponse struct {
	// Answer is the narrative with numbered inline citations like [1].
	Answer string `json:"answer" yaml:"answer"`

	// Citations lists one "[n] Title - URL" line per cited record.
	Citations []string `json:"citations" yaml:"citations"`
}
