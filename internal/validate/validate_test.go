// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func resp(answer string, citations ...string) types.SearchResponse {
	return types.SearchResponse{Answer: answer, Citations: citations}
}

func TestRequireCitations(t *testing.T) {
	v := RequireCitations()

	out := v.Validate(resp("Hair loss is linked to androgens [1]."))
	assert.False(t, out.Accepted)
	assert.Equal(t, ReasonNoCitations, out.Reason)

	// The same candidate with one valid citation is accepted.
	out = v.Validate(resp("Hair loss is linked to androgens [1].", "[1] Androgenetic Alopecia Review - http://ex/1"))
	assert.True(t, out.Accepted)
	assert.Empty(t, out.Reason)
}

func TestWellFormed(t *testing.T) {
	tests := []struct {
		name     string
		cites    []string
		accepted bool
	}{
		{"none", nil, true},
		{"valid", []string{"[1] A - http://a", "[2] B - http://b"}, true},
		{"no delimiter", []string{"No delimiter here"}, false},
		{"non numeric", []string{"[x] A - http://a"}, false},
		{"empty url", []string{"[1] A - "}, false},
		{"zero index", []string{"[0] A - http://a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := WellFormed().Validate(resp("text", tt.cites...))
			assert.Equal(t, tt.accepted, out.Accepted)
			if !tt.accepted {
				assert.Contains(t, out.Reason, "malformed")
			}
		})
	}
}

func TestMinCitations(t *testing.T) {
	v := MinCitations(2)
	assert.False(t, v.Validate(resp("a", "[1] A - u")).Accepted)
	assert.True(t, v.Validate(resp("a", "[1] A - u", "[2] B - v")).Accepted)
}

func TestReferencesResolved(t *testing.T) {
	v := ReferencesResolved()

	assert.True(t, v.Validate(resp("A [1] and B [2].", "[1] A - u", "[2] B - v")).Accepted)
	assert.True(t, v.Validate(resp("No inline refs.", "[1] A - u")).Accepted)

	out := v.Validate(resp("A [1], B [3], C [4].", "[1] A - u"))
	require.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "[3], [4]")
}

func TestChainStopsAtFirstRejection(t *testing.T) {
	calls := 0
	counting := Func(func(types.SearchResponse) Outcome { calls++; return Accept() })

	out := Chain(RequireCitations(), counting).Validate(resp("x"))
	assert.False(t, out.Accepted)
	assert.Equal(t, ReasonNoCitations, out.Reason)
	assert.Equal(t, 0, calls)

	out = Chain(counting, counting).Validate(resp("x"))
	assert.True(t, out.Accepted)
	assert.Equal(t, 2, calls)
}

func TestNoop(t *testing.T) {
	assert.True(t, Noop().Validate(resp("")).Accepted)
}

func TestForPolicy(t *testing.T) {
	tests := []struct {
		policy   types.CitationPolicy
		min      int
		cand     types.SearchResponse
		accepted bool
	}{
		{types.PolicyNone, 0, resp("x"), true},
		{types.PolicyRequire, 0, resp("x"), false},
		{types.PolicyRequire, 0, resp("x [9]", "[1] A - u"), true},
		{types.PolicyStrict, 0, resp("x [9]", "[1] A - u"), false},
		{types.PolicyStrict, 0, resp("x [1]", "[1] A - u"), true},
		{types.PolicyRequire, 2, resp("x", "[1] A - u"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			v, err := ForPolicy(tt.policy, tt.min)
			require.NoError(t, err)
			assert.Equal(t, tt.accepted, v.Validate(tt.cand).Accepted)
		})
	}

	_, err := ForPolicy("loose", 0)
	assert.Error(t, err)
}
