// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm adapts chat-completion APIs with tool calling to one Model
// interface used by the agent.
package llm

import "context"

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleTool marks the result of one tool call, paired by ToolCallID.
	RoleTool Role = "tool"
)

// ToolCall is a tool request made by the model.
type ToolCall struct {
	ID   string
	Name string
	// Arguments is the raw JSON object the model supplied.
	Arguments string
}

// Message is one entry of the transcript sent to the model.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that request tools.
	ToolCalls []ToolCall

	// ToolCallID and ToolName are set on tool messages.
	ToolCallID string
	ToolName   string
}

// ToolSpec advertises a tool to the model. Parameters is a JSON schema.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Request is one model round-trip.
type Request struct {
	System    string
	Messages  []Message
	Tools     []ToolSpec
	MaxTokens int
}

// Usage is the token accounting reported for one response.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// Response is the model's reply: text, tool calls, or both.
type Response struct {
	Content      string
	ToolCalls    []ToolCall
	Usage        Usage
	Model        string
	FinishReason string
}

// Model produces the next assistant message for a transcript.
type Model interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

const defaultMaxTokens = 4096
