// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package telemetry carries the structured events the agent emits. Delivery
// is fire-and-forget: a failing sink never fails the caller.
package telemetry

import (
	"context"
	"time"

	"github.com/pdiddy/research-assistant/internal/logging"
)

// Event names.
const (
	EventUserQuery          = "user_query"
	EventToolResult         = "tool_result"
	EventAgentResponse      = "agent_response"
	EventAgentError         = "agent_error"
	EventValidationRejected = "validation_rejected"
)

// Event is one telemetry record.
type Event struct {
	Name   string
	Time   time.Time
	Fields map[string]any
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// Emit delivers e to sink, recovering from any panic in the sink.
// A nil sink discards the event.
func Emit(ctx context.Context, sink Sink, e Event) {
	if sink == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(ctx).Warn("telemetry sink panicked", "event", e.Name, "panic", r)
		}
	}()
	sink.Emit(ctx, e)
}

// UserQuery reports a query received from the user.
func UserQuery(query string) Event {
	return Event{Name: EventUserQuery, Fields: map[string]any{"query": query}}
}

// ToolResult reports how many evidence records a tool returned.
func ToolResult(tool string, count int) Event {
	return Event{Name: EventToolResult, Fields: map[string]any{"tool_name": tool, "count": count}}
}

// AgentResponse reports an accepted answer.
func AgentResponse(citationCount, totalTokens int) Event {
	return Event{Name: EventAgentResponse, Fields: map[string]any{
		"citation_count": citationCount,
		"total_tokens":   totalTokens,
	}}
}

// AgentError reports a failed query.
func AgentError(err error) Event {
	return Event{Name: EventAgentError, Fields: map[string]any{"error": err.Error()}}
}

// ValidationRejected reports a candidate answer sent back to the model.
func ValidationRejected(reason string, retry int) Event {
	return Event{Name: EventValidationRejected, Fields: map[string]any{"reason": reason, "retry": retry}}
}

// Multi fans each event out to every sink in order.
type Multi []Sink

// Emit delivers e to each sink, isolating panics per sink.
func (m Multi) Emit(ctx context.Context, e Event) {
	for _, s := range m {
		Emit(ctx, s, e)
	}
}

// Discard drops every event.
type Discard struct{}

// Emit does nothing.
func (Discard) Emit(context.Context, Event) {}
