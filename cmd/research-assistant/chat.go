// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/internal/logging"
	"github.com/pdiddy/research-assistant/internal/telemetry"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive research session",
	Long: `Chat reads questions from standard input and answers each one with
citations. The conversation history is kept between questions, so follow-up
questions can refer to earlier answers. Type "quit" to exit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().Bool("markdown", false, "render citations as markdown links")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	markdown, _ := cmd.Flags().GetBool("markdown")

	o, closeFn, err := buildOrchestrator(cfg, telemetry.LogSink{})
	if err != nil {
		return err
	}
	defer closeFn()

	return chatLoop(cmd.Context(), o, os.Stdin, os.Stdout, usageLimits(cfg), markdown)
}

type answerer interface {
	Answer(ctx context.Context, query string, state types.ConversationState, limits types.UsageLimits) (agent.Result, error)
}

// chatLoop answers one question per input line until "quit" or EOF. A
// failed question is reported and the history from before it is kept.
func chatLoop(ctx context.Context, a answerer, in io.Reader, out io.Writer, limits types.UsageLimits, markdown bool) error {
	ctx = logging.WithSessionID(ctx, "cli")
	state := types.ConversationState{SessionID: "cli"}
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, `Medical research assistant. Type "quit" to exit.`)
	for {
		fmt.Fprint(out, "\nQuestion: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(query, "quit") {
			return nil
		}
		if query == "" {
			continue
		}

		res, err := a.Answer(ctx, query, state, limits)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(out, "\nError: %v\n", err)
			continue
		}
		state = res.State
		printAnswer(out, res, markdown)
	}
}
