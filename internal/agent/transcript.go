// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/tools"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// emptyDraft stands in for a rejected reply that had no text. Chat APIs
// refuse an assistant message with neither content nor tool calls.
const emptyDraft = "(empty response)"

// buildMessages renders the conversation as model messages. Consecutive
// ToolInvocation turns from the same round become one assistant message
// carrying all the calls, followed by one tool message per call.
func buildMessages(turns []types.Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns)+2)
	for i := 0; i < len(turns); i++ {
		switch t := turns[i].(type) {
		case types.UserMessage:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: t.Text})

		case types.ToolInvocation:
			call := llm.Message{Role: llm.RoleAssistant}
			var results []llm.Message
			j := i
			for ; j < len(turns); j++ {
				inv, ok := turns[j].(types.ToolInvocation)
				if !ok || inv.Round != t.Round {
					break
				}
				id := inv.CallID
				if id == "" {
					id = fmt.Sprintf("call_%d", j)
				}
				call.ToolCalls = append(call.ToolCalls, llm.ToolCall{
					ID:        id,
					Name:      inv.Tool,
					Arguments: keywordArgs(inv.Keyword),
				})
				results = append(results, llm.Message{
					Role:       llm.RoleTool,
					ToolCallID: id,
					ToolName:   inv.Tool,
					Content:    toolResultContent(inv),
				})
			}
			msgs = append(msgs, call)
			msgs = append(msgs, results...)
			i = j - 1

		case types.ModelDraft:
			msgs = append(msgs,
				llm.Message{Role: llm.RoleAssistant, Content: draftContent(t)},
				llm.Message{Role: llm.RoleUser, Content: feedback(t.Rejection)},
			)

		case types.FinalAnswer:
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: renderAnswer(t.Text, t.Citations)})
		}
	}
	return msgs
}

func keywordArgs(keyword string) string {
	b, _ := json.Marshal(map[string]string{tools.KeywordParam: keyword})
	return string(b)
}

// evidencePayload is the shape of one record as shown to the model.
type evidencePayload struct {
	Title   string         `json:"title"`
	Summary string         `json:"summary"`
	URL     string         `json:"url"`
	Authors []string       `json:"authors,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

type unavailablePayload struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Evidence []string `json:"evidence"`
}

// toolResultContent encodes a tool result. An unavailable source is shown
// as an explicit empty result so the model can try another source.
func toolResultContent(inv types.ToolInvocation) string {
	var v any
	if inv.Unavailable != "" {
		v = unavailablePayload{
			Status:   "unavailable",
			Message:  "The source returned no evidence: " + inv.Unavailable + ". Try another source or answer from the evidence you have.",
			Evidence: []string{},
		}
	} else {
		records := make([]evidencePayload, len(inv.Evidence))
		for i, e := range inv.Evidence {
			records[i] = evidencePayload{Title: e.Title, Summary: e.Summary, URL: e.URL, Authors: e.Authors, Extra: e.Extra}
		}
		v = records
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"status":"error","message":%q}`, err.Error())
	}
	return string(b)
}

// renderAnswer formats an answer the way the model is asked to write one.
func renderAnswer(answer string, citations []string) string {
	if len(citations) == 0 {
		return answer
	}
	return answer + "\n\nCitations:\n" + strings.Join(citations, "\n")
}

func draftContent(d types.ModelDraft) string {
	if strings.TrimSpace(d.Text) == "" && len(d.Citations) == 0 {
		return emptyDraft
	}
	return renderAnswer(d.Text, d.Citations)
}

func feedback(reason string) string {
	return "Validation feedback:\n" + reason + "\n\nFix the errors and try again."
}
