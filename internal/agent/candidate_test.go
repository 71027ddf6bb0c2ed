// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestParseTextCandidate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		answer    string
		citations []string
	}{
		{
			name:      "json object",
			text:      `{"answer":"A [1].","citations":["[1] T - http://t"]}`,
			answer:    "A [1].",
			citations: []string{"[1] T - http://t"},
		},
		{
			name:      "fenced json",
			text:      "```json\n{\"answer\":\"A [1].\",\"citations\":[\"[1] T - http://t\"]}\n```",
			answer:    "A [1].",
			citations: []string{"[1] T - http://t"},
		},
		{
			name:      "answer and citations block",
			text:      "Answer: A [1][2].\n\nCitations:\n- [1] T - http://t\n* [2] U - http://u\n",
			answer:    "A [1][2].",
			citations: []string{"[1] T - http://t", "[2] U - http://u"},
		},
		{
			name:      "markdown references heading",
			text:      "A [1].\n\n**References**\n[1] T - http://t",
			answer:    "A [1].",
			citations: []string{"[1] T - http://t"},
		},
		{
			name:   "plain text",
			text:   "  Hair loss has many causes.  ",
			answer: "Hair loss has many causes.",
		},
		{
			name:   "json without answer falls through",
			text:   `{"citations":[]}`,
			answer: `{"citations":[]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTextCandidate(tt.text)
			assert.Equal(t, tt.answer, got.Answer)
			assert.Equal(t, tt.citations, got.Citations)
		})
	}
}

func TestInterpret(t *testing.T) {
	final := llm.ToolCall{ID: "f", Name: FinalResultTool, Arguments: `{"answer":"A","citations":["[1] T - http://t"]}`}
	search := llm.ToolCall{ID: "s", Name: "search_pubmed", Arguments: `{"keyword":"hair"}`}

	st := interpret(&llm.Response{ToolCalls: []llm.ToolCall{search, final}})
	assert.False(t, st.isToolRound(), "final_result wins over other calls")
	assert.Equal(t, "A", st.candidate.Answer)

	st = interpret(&llm.Response{ToolCalls: []llm.ToolCall{search}})
	assert.True(t, st.isToolRound())

	st = interpret(&llm.Response{Content: "plain"})
	assert.False(t, st.isToolRound())
	assert.Equal(t, "plain", st.candidate.Answer)
	assert.Empty(t, st.invalid)
}

func TestBuildMessagesGroupsToolRounds(t *testing.T) {
	turns := []types.Turn{
		types.UserMessage{Text: "q"},
		types.ToolInvocation{CallID: "a", Tool: "search_pubmed", Keyword: "hair", Evidence: []types.Evidence{alopecia}},
		types.ToolInvocation{Tool: "search_health_topics", Keyword: "hair loss", Unavailable: "timed out"},
		types.ModelDraft{Text: "uncited", Rejection: "Response must include at least one citation."},
		types.FinalAnswer{Text: "A [1].", Citations: []string{"[1] T - http://t"}},
	}

	msgs := buildMessages(turns)
	require.Len(t, msgs, 7)

	assert.Equal(t, llm.RoleUser, msgs[0].Role)

	assert.Equal(t, llm.RoleAssistant, msgs[1].Role)
	require.Len(t, msgs[1].ToolCalls, 2)
	assert.Equal(t, "a", msgs[1].ToolCalls[0].ID)
	assert.Equal(t, "call_2", msgs[1].ToolCalls[1].ID)
	assert.JSONEq(t, `{"keyword":"hair"}`, msgs[1].ToolCalls[0].Arguments)

	assert.Equal(t, llm.RoleTool, msgs[2].Role)
	assert.Equal(t, "a", msgs[2].ToolCallID)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(msgs[2].Content), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Androgenetic Alopecia Review", records[0]["title"])

	assert.Equal(t, "call_2", msgs[3].ToolCallID)
	var down map[string]any
	require.NoError(t, json.Unmarshal([]byte(msgs[3].Content), &down))
	assert.Equal(t, "unavailable", down["status"])
	assert.Empty(t, down["evidence"])

	assert.Equal(t, "uncited", msgs[4].Content)
	assert.Equal(t, llm.RoleUser, msgs[5].Role)
	assert.Equal(t, "Validation feedback:\nResponse must include at least one citation.\n\nFix the errors and try again.", msgs[5].Content)

	assert.Equal(t, "A [1].\n\nCitations:\n[1] T - http://t", msgs[6].Content)
}

func TestBuildMessagesSplitsRounds(t *testing.T) {
	turns := []types.Turn{
		types.UserMessage{Text: "q"},
		types.ToolInvocation{CallID: "a", Round: 1, Tool: "search_pubmed", Keyword: "hair"},
		types.ToolInvocation{CallID: "b", Round: 1, Tool: "search_health_topics", Keyword: "hair"},
		types.ToolInvocation{CallID: "c", Round: 2, Tool: "search_pubmed", Keyword: "alopecia"},
	}

	msgs := buildMessages(turns)
	require.Len(t, msgs, 6)
	require.Len(t, msgs[1].ToolCalls, 2)
	assert.Equal(t, "b", msgs[3].ToolCallID)
	require.Len(t, msgs[4].ToolCalls, 1)
	assert.Equal(t, "c", msgs[4].ToolCalls[0].ID)
	assert.Equal(t, "c", msgs[5].ToolCallID)
}

func TestBuildMessagesEmptyDraft(t *testing.T) {
	msgs := buildMessages([]types.Turn{
		types.UserMessage{Text: "q"},
		types.ModelDraft{Text: "  ", Rejection: "Response must include an answer."},
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, emptyDraft, msgs[1].Content)
	assert.Contains(t, msgs[2].Content, "Response must include an answer.")
}
