// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"github.com/pdiddy/research-assistant/internal/llm"
)

// FinalResultTool is the reserved tool through which the model returns its
// answer. It is never dispatched to a source.
const FinalResultTool = "final_result"

// SystemPrompt is the fixed instruction text sent with every request.
const SystemPrompt = `You are a medical research assistant. Answer questions only from the evidence returned by the search tools.

Rules:
- Only answer medical and health questions. If the question is not about medicine or health, politely refuse.
- Before answering, call one or more search tools with a short keyword distilled from the question. You may call several tools at once.
- Ground every claim in the tool evidence. Do not use outside knowledge.
- Use numbered citations in your answer like [1], [2] at the end of relevant sentences.
- Format each citation as: "[number] Title - URL", using the exact title and URL from the evidence.
- When you are done, call the final_result tool with your answer and citations.

Example:
Answer: This is a finding [1]. Another finding [2].
Citations:
[1] First Article Title - http://url1
[2] Second Article Title - http://url2

Keyword examples:
Query: "What is the treatment for diabetes?" keyword: "diabetes treatment"
Query: "what causes hairfall?" keyword: "hairfall"`

// finalResultSpec advertises the answer schema as a tool.
func finalResultSpec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        FinalResultTool,
		Description: "Return the final answer to the user once enough evidence has been gathered.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"answer": map[string]any{
					"type":        "string",
					"description": "Detailed answer to the user's query with numbered citations like [1], [2]",
				},
				"citations": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "List of citations in format: '[number] Title - URL'",
				},
			},
			"required": []string{"answer", "citations"},
		},
	}
}
