// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TurnKind names a conversation turn variant.
type TurnKind string

const (
	KindUserMessage    TurnKind = "user_message"
	KindToolInvocation TurnKind = "tool_invocation"
	KindModelDraft     TurnKind = "model_draft"
	KindFinalAnswer    TurnKind = "final_answer"
)

// Turn is one entry in a conversation. The set of implementations is
// closed: UserMessage, ToolInvocation, ModelDraft, and FinalAnswer.
type Turn interface {
	Kind() TurnKind
	turn()
}

// UserMessage is a query typed by the user.
type UserMessage struct {
	Text string `json:"text" yaml:"text"`
}

// ToolInvocation records one tool call requested by the model and the
// evidence it returned. Evidence is read-only once recorded.
type ToolInvocation struct {
	// CallID is the model-assigned identifier pairing the request with its result.
	CallID string `json:"call_id" yaml:"call_id"`

	// Round is the model request, counted within one query, that asked
	// for this call. Calls sharing a round were requested together.
	Round int `json:"round" yaml:"round"`

	Tool     string     `json:"tool" yaml:"tool"`
	Keyword  string     `json:"keyword" yaml:"keyword"`
	Evidence []Evidence `json:"evidence" yaml:"evidence"`

	// Unavailable is set when the source failed or timed out; Evidence is
	// then empty and the text is shown to the model instead.
	Unavailable string `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
}

// ModelDraft is a candidate answer that failed validation, together with
// the reason it was sent back.
type ModelDraft struct {
	Text      string   `json:"text" yaml:"text"`
	Citations []string `json:"citations,omitempty" yaml:"citations,omitempty"`
	Rejection string   `json:"rejection" yaml:"rejection"`
}

// FinalAnswer is an accepted answer with its citation lines.
type FinalAnswer struct {
	Text      string   `json:"text" yaml:"text"`
	Citations []string `json:"citations" yaml:"citations"`
}

func (UserMessage) Kind() TurnKind    { return KindUserMessage }
func (ToolInvocation) Kind() TurnKind { return KindToolInvocation }
func (ModelDraft) Kind() TurnKind     { return KindModelDraft }
func (FinalAnswer) Kind() TurnKind    { return KindFinalAnswer }

func (UserMessage) turn()    {}
func (ToolInvocation) turn() {}
func (ModelDraft) turn()     {}
func (FinalAnswer) turn()    {}

// Usage accumulates token counts reported by the model.
type Usage struct {
	RequestTokens  int `json:"request_tokens" yaml:"request_tokens"`
	ResponseTokens int `json:"response_tokens" yaml:"response_tokens"`
	TotalTokens    int `json:"total_tokens" yaml:"total_tokens"`

	// Requests counts model round-trips.
	Requests int `json:"requests" yaml:"requests"`
}

// Add returns the sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		RequestTokens:  u.RequestTokens + o.RequestTokens,
		ResponseTokens: u.ResponseTokens + o.ResponseTokens,
		TotalTokens:    u.TotalTokens + o.TotalTokens,
		Requests:       u.Requests + o.Requests,
	}
}

// UsageLimits caps the work done for a single query.
type UsageLimits struct {
	// RequestLimit is the maximum number of model requests, tool rounds
	// included. Must be positive.
	RequestLimit int `json:"request_limit" yaml:"request_limit"`
}

// ConversationState is the turn history and cumulative usage of one chat
// session. It is owned by the caller and is not safe for concurrent
// mutation: at most one query per state may be in flight.
type ConversationState struct {
	SessionID string `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Turns     []Turn `json:"turns" yaml:"turns"`
	Usage     Usage  `json:"usage" yaml:"usage"`
}

// Clone returns a copy whose Turns slice does not share backing storage
// with s, so appends to the copy never show through to s.
func (s ConversationState) Clone() ConversationState {
	c := s
	c.Turns = make([]Turn, len(s.Turns))
	copy(c.Turns, s.Turns)
	return c
}

// Len returns the number of turns.
func (s ConversationState) Len() int { return len(s.Turns) }
