// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate decides whether a candidate answer may be returned to
// the user. A rejection carries the corrective feedback sent back to the
// model.
package validate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/internal/citation"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// ReasonNoCitations is the default rejection for an uncited answer.
const ReasonNoCitations = "Response must include at least one citation."

// Outcome is the result of validating one candidate.
type Outcome struct {
	Accepted bool
	Reason   string
}

// Accept returns an accepting Outcome.
func Accept() Outcome { return Outcome{Accepted: true} }

// Reject returns a rejecting Outcome with the given reason.
func Reject(reason string) Outcome { return Outcome{Reason: reason} }

// Validator inspects a candidate answer.
type Validator interface {
	Validate(types.SearchResponse) Outcome
}

// Func adapts a function to Validator.
type Func func(types.SearchResponse) Outcome

// Validate calls f.
func (f Func) Validate(r types.SearchResponse) Outcome { return f(r) }

// RequireCitations rejects candidates with no citation lines.
func RequireCitations() Validator {
	return Func(func(r types.SearchResponse) Outcome {
		if len(r.Citations) == 0 {
			return Reject(ReasonNoCitations)
		}
		return Accept()
	})
}

// MinCitations rejects candidates with fewer than n citation lines.
func MinCitations(n int) Validator {
	return Func(func(r types.SearchResponse) Outcome {
		if len(r.Citations) < n {
			return Reject(fmt.Sprintf("Response must include at least %d citations, got %d.", n, len(r.Citations)))
		}
		return Accept()
	})
}

// WellFormed rejects candidates whose citation lines do not parse as
// "[n] Title - URL" with a positive n and non-empty title and URL.
func WellFormed() Validator {
	return Func(func(r types.SearchResponse) Outcome {
		for _, line := range r.Citations {
			c, err := citation.Parse(line)
			if err != nil || c.Index == 0 || strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.URL) == "" {
				return Reject(fmt.Sprintf("Citation %q is malformed; format each citation as \"[number] Title - URL\".", line))
			}
		}
		return Accept()
	})
}

// ReferencesResolved rejects candidates whose answer uses an inline [n]
// marker with no citation line numbered n. Malformed lines are ignored
// here; combine with WellFormed to reject them.
func ReferencesResolved() Validator {
	return Func(func(r types.SearchResponse) Outcome {
		known := make(map[int]bool)
		for _, line := range r.Citations {
			if c, err := citation.Parse(line); err == nil && c.Index > 0 {
				known[c.Index] = true
			}
		}

		var missing []string
		for _, n := range citation.InlineRefs(r.Answer) {
			if !known[n] {
				missing = append(missing, fmt.Sprintf("[%d]", n))
			}
		}
		if len(missing) > 0 {
			return Reject(fmt.Sprintf("References %s in the answer have no matching citation.", strings.Join(missing, ", ")))
		}
		return Accept()
	})
}

// Chain runs validators in order and returns the first rejection.
func Chain(vs ...Validator) Validator {
	return Func(func(r types.SearchResponse) Outcome {
		for _, v := range vs {
			if out := v.Validate(r); !out.Accepted {
				return out
			}
		}
		return Accept()
	})
}

// Noop accepts every candidate.
func Noop() Validator {
	return Func(func(types.SearchResponse) Outcome { return Accept() })
}

// ForPolicy builds the validator for a configured policy. minCitations
// above one adds a MinCitations check to require and strict.
func ForPolicy(policy types.CitationPolicy, minCitations int) (Validator, error) {
	var vs []Validator
	switch policy {
	case types.PolicyNone:
		return Noop(), nil
	case types.PolicyRequire, "":
		vs = []Validator{RequireCitations()}
	case types.PolicyStrict:
		vs = []Validator{RequireCitations(), WellFormed(), ReferencesResolved()}
	default:
		return nil, fmt.Errorf("unknown citation policy %q", policy)
	}
	if minCitations > 1 {
		vs = append(vs, MinCitations(minCitations))
	}
	return Chain(vs...), nil
}
