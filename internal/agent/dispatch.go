// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-assistant/internal/logging"
	"github.com/pdiddy/research-assistant/internal/telemetry"
	"github.com/pdiddy/research-assistant/internal/tools"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// dispatch runs one tool round. Every name is checked before anything
// runs, so an unknown tool fails the round without side effects. Calls
// then run concurrently and the round completes only when all of them
// have returned. Results keep the order of calls.
func (o *Orchestrator) dispatch(ctx context.Context, calls []toolCall) ([]types.ToolInvocation, error) {
	for _, c := range calls {
		if _, err := o.registry.Lookup(c.Name); err != nil {
			return nil, fmt.Errorf("model requested tool %q: %w", c.Name, err)
		}
	}

	invs := make([]types.ToolInvocation, len(calls))
	var g errgroup.Group
	for i, c := range calls {
		g.Go(func() error {
			invs[i] = o.invoke(ctx, c)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return invs, nil
}

// toolCall is a model tool request with a guaranteed non-empty ID.
type toolCall struct {
	ID        string
	Name      string
	Arguments string
}

type keywordArguments struct {
	Keyword string `json:"keyword"`
}

// invoke runs one call. Failures never escape: they are recorded on the
// invocation so the model learns the source yielded nothing.
func (o *Orchestrator) invoke(ctx context.Context, c toolCall) types.ToolInvocation {
	log := logging.FromContext(ctx)
	inv := types.ToolInvocation{CallID: c.ID, Tool: c.Name, Evidence: []types.Evidence{}}

	var args keywordArguments
	if err := json.Unmarshal([]byte(c.Arguments), &args); err != nil {
		inv.Unavailable = fmt.Sprintf("%s: %v: %v", c.Name, tools.ErrInvalidArguments, err)
	} else {
		inv.Keyword = args.Keyword
		evidence, err := o.registry.Invoke(ctx, c.Name, args.Keyword)
		if err != nil {
			inv.Unavailable = err.Error()
		} else {
			inv.Evidence = evidence
		}
	}

	if inv.Unavailable != "" {
		log.Warn("tool returned no evidence", "tool", c.Name, "keyword", inv.Keyword, "reason", inv.Unavailable)
	} else {
		log.Debug("tool result", "tool", c.Name, "keyword", inv.Keyword, "count", len(inv.Evidence))
	}
	telemetry.Emit(ctx, o.sink, telemetry.ToolResult(c.Name, len(inv.Evidence)))
	return inv
}
