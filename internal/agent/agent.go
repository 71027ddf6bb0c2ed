// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent runs the question-answering loop: it lets the model call
// evidence tools, validates the candidate answer, and threads the
// conversation state between queries.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/internal/citation"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/logging"
	"github.com/pdiddy/research-assistant/internal/telemetry"
	"github.com/pdiddy/research-assistant/internal/tools"
	"github.com/pdiddy/research-assistant/internal/validate"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	DefaultMaxRetries   = 4
	DefaultRequestLimit = 10
)

// Orchestrator answers queries with a model and a tool registry. It holds
// no per-conversation state and is safe for concurrent use by multiple
// sessions.
type Orchestrator struct {
	model      llm.Model
	registry   *tools.Registry
	validator  validate.Validator
	sink       telemetry.Sink
	maxRetries int
	maxTokens  int
	system     string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithValidator replaces the default RequireCitations validator.
func WithValidator(v validate.Validator) Option {
	return func(o *Orchestrator) { o.validator = v }
}

// WithTelemetry sets the event sink.
func WithTelemetry(s telemetry.Sink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// WithMaxRetries sets how many rejected candidates may be retried.
func WithMaxRetries(n int) Option {
	return func(o *Orchestrator) { o.maxRetries = n }
}

// WithMaxTokens caps tokens generated per model request.
func WithMaxTokens(n int) Option {
	return func(o *Orchestrator) { o.maxTokens = n }
}

// WithSystemPrompt replaces SystemPrompt.
func WithSystemPrompt(s string) Option {
	return func(o *Orchestrator) { o.system = s }
}

// New returns an Orchestrator using model and the tools in registry.
func New(model llm.Model, registry *tools.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		model:      model,
		registry:   registry,
		validator:  validate.RequireCitations(),
		sink:       telemetry.Discard{},
		maxRetries: DefaultMaxRetries,
		system:     SystemPrompt,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result is an accepted answer.
type Result struct {
	Answer     string
	Citations  []string
	References []citation.Citation

	// State is the input state with this query's turns appended and its
	// usage added.
	State types.ConversationState

	// Usage covers this query only.
	Usage types.Usage

	// Rejections counts candidates the validator sent back.
	Rejections int
}

// Answer runs one query against state. The returned Result carries the
// updated state; state itself is never modified, so on error or
// cancellation the caller keeps the last consistent history.
//
// A zero limits.RequestLimit uses DefaultRequestLimit.
func (o *Orchestrator) Answer(ctx context.Context, query string, state types.ConversationState, limits types.UsageLimits) (Result, error) {
	telemetry.Emit(ctx, o.sink, telemetry.UserQuery(query))

	res, err := o.run(ctx, query, state, limits)
	if err != nil {
		logging.FromContext(ctx).Error("query failed", "error", err)
		telemetry.Emit(ctx, o.sink, telemetry.AgentError(err))
		return Result{}, err
	}

	telemetry.Emit(ctx, o.sink, telemetry.AgentResponse(len(res.Citations), res.Usage.TotalTokens))
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, query string, state types.ConversationState, limits types.UsageLimits) (Result, error) {
	log := logging.FromContext(ctx)

	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}
	limit := limits.RequestLimit
	if limit <= 0 {
		limit = DefaultRequestLimit
	}

	work := state.Clone()
	work.Turns = append(work.Turns, types.UserMessage{Text: query})

	specs := o.toolSpecs()
	var usage types.Usage
	retries := 0

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if usage.Requests >= limit {
			return Result{}, fmt.Errorf("%w: %d model requests without an accepted answer", ErrBudgetExceeded, usage.Requests)
		}

		resp, err := o.model.Complete(ctx, llm.Request{
			System:    o.system,
			Messages:  buildMessages(work.Turns),
			Tools:     specs,
			MaxTokens: o.maxTokens,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			return Result{}, fmt.Errorf("model request %d: %w", usage.Requests+1, err)
		}
		usage = usage.Add(types.Usage{
			RequestTokens:  resp.Usage.InputTokens,
			ResponseTokens: resp.Usage.OutputTokens,
			TotalTokens:    resp.Usage.Total(),
			Requests:       1,
		})

		st := interpret(resp)

		if st.isToolRound() {
			// The results of this round could never be read by the model.
			if usage.Requests >= limit {
				return Result{}, fmt.Errorf("%w: tool round requested at the request limit of %d", ErrBudgetExceeded, limit)
			}
			calls := withCallIDs(st.calls, len(work.Turns))
			log.Debug("tool round", "request", usage.Requests, "calls", len(calls))

			invs, err := o.dispatch(ctx, calls)
			if err != nil {
				return Result{}, err
			}
			for _, inv := range invs {
				inv.Round = usage.Requests
				work.Turns = append(work.Turns, inv)
			}
			continue
		}

		cand := st.candidate
		outcome, refs := o.check(st)
		if !outcome.Accepted {
			retries++
			work.Turns = append(work.Turns, types.ModelDraft{
				Text:      cand.Answer,
				Citations: cand.Citations,
				Rejection: outcome.Reason,
			})
			log.Warn("answer rejected", "reason", outcome.Reason, "retry", retries)
			telemetry.Emit(ctx, o.sink, telemetry.ValidationRejected(outcome.Reason, retries))

			if retries > o.maxRetries {
				return Result{}, &RetryCeilingError{Retries: o.maxRetries, Reason: outcome.Reason}
			}
			continue
		}

		work.Turns = append(work.Turns, types.FinalAnswer{Text: cand.Answer, Citations: cand.Citations})
		work.Usage = work.Usage.Add(usage)

		log.Info("answer accepted", "citations", len(cand.Citations), "requests", usage.Requests, "rejections", retries)
		return Result{
			Answer:     cand.Answer,
			Citations:  cand.Citations,
			References: refs,
			State:      work,
			Usage:      usage,
			Rejections: retries,
		}, nil
	}
}

// check validates a candidate and parses its citations. A citation line
// that does not parse rejects the candidate like any validator failure.
func (o *Orchestrator) check(st step) (validate.Outcome, []citation.Citation) {
	if st.invalid != "" {
		return validate.Reject(st.invalid), nil
	}
	if strings.TrimSpace(st.candidate.Answer) == "" {
		return validate.Reject("Response must include an answer."), nil
	}

	outcome := o.validator.Validate(st.candidate)
	if !outcome.Accepted {
		return outcome, nil
	}

	refs, err := citation.ParseAll(st.candidate.Citations)
	if err != nil {
		return validate.Reject(fmt.Sprintf("Citations must be formatted as \"[number] Title - URL\" (%v).", err)), nil
	}
	return outcome, refs
}

func (o *Orchestrator) toolSpecs() []llm.ToolSpec {
	descs := o.registry.List()
	specs := make([]llm.ToolSpec, 0, len(descs)+1)
	for _, d := range descs {
		specs = append(specs, llm.ToolSpec{
			Name:        string(d.Name),
			Description: d.Description,
			Parameters:  d.Parameters(),
		})
	}
	return append(specs, finalResultSpec())
}

// withCallIDs fills in IDs some OpenAI-compatible servers leave empty.
// base keeps synthesized IDs unique within a conversation.
func withCallIDs(calls []llm.ToolCall, base int) []toolCall {
	out := make([]toolCall, len(calls))
	for i, c := range calls {
		id := c.ID
		if id == "" {
			id = fmt.Sprintf("call_%d_%d", base, i)
		}
		out[i] = toolCall{ID: id, Name: c.Name, Arguments: c.Arguments}
	}
	return out
}
