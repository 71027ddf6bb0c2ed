// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// step is the interpretation of one model response: either tool calls to
// dispatch or a candidate answer to validate.
type step struct {
	calls     []llm.ToolCall
	candidate types.SearchResponse

	// invalid is set when the final_result arguments could not be decoded;
	// the candidate is then rejected with this reason.
	invalid string
}

func (s step) isToolRound() bool { return len(s.calls) > 0 }

// interpret classifies resp. A final_result call wins over any other tool
// calls in the same response; otherwise tool calls make a tool round, and
// plain text is parsed as a candidate.
func interpret(resp *llm.Response) step {
	for _, tc := range resp.ToolCalls {
		if tc.Name != FinalResultTool {
			continue
		}
		var sr types.SearchResponse
		if err := json.Unmarshal([]byte(tc.Arguments), &sr); err != nil {
			return step{
				candidate: types.SearchResponse{Answer: tc.Arguments},
				invalid:   fmt.Sprintf("Invalid %s arguments: %v. Provide a JSON object with \"answer\" and \"citations\".", FinalResultTool, err),
			}
		}
		return step{candidate: sr}
	}
	if len(resp.ToolCalls) > 0 {
		return step{calls: resp.ToolCalls}
	}
	return step{candidate: parseTextCandidate(resp.Content)}
}

// parseTextCandidate reads an answer given as message text: a JSON object
// (optionally fenced), an "Answer: ... Citations: ..." block, or free text
// with no citations.
func parseTextCandidate(text string) types.SearchResponse {
	text = strings.TrimSpace(text)

	if body := stripFence(text); strings.HasPrefix(body, "{") {
		var sr types.SearchResponse
		if err := json.Unmarshal([]byte(body), &sr); err == nil && sr.Answer != "" {
			return sr
		}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !isCitationsHeading(line) {
			continue
		}
		answer := strings.TrimSpace(strings.Join(lines[:i], "\n"))
		answer = strings.TrimSpace(strings.TrimPrefix(answer, "Answer:"))

		var cites []string
		for _, c := range lines[i+1:] {
			c = strings.TrimSpace(c)
			c = strings.TrimPrefix(c, "- ")
			c = strings.TrimPrefix(c, "* ")
			if c != "" {
				cites = append(cites, c)
			}
		}
		return types.SearchResponse{Answer: answer, Citations: cites}
	}

	return types.SearchResponse{Answer: strings.TrimSpace(strings.TrimPrefix(text, "Answer:"))}
}

func isCitationsHeading(line string) bool {
	line = strings.Trim(strings.TrimSpace(line), "*#: ")
	return strings.EqualFold(line, "citations") || strings.EqualFold(line, "references")
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
