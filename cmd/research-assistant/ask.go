// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/internal/citation"
	"github.com/pdiddy/research-assistant/internal/telemetry"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single medical question with citations",
	Long: `Ask sends one question to the agent. The model searches the evidence
sources, and the answer is printed with its citations once it passes
validation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the answer as JSON")
	askCmd.Flags().Bool("yaml", false, "output the answer as YAML")
	askCmd.Flags().Bool("markdown", false, "render citations as markdown links")

	rootCmd.AddCommand(askCmd)
}

// askOutput is the structured form written by --json and --yaml.
type askOutput struct {
	Answer     string              `json:"answer" yaml:"answer"`
	Citations  []string            `json:"citations" yaml:"citations"`
	References []citation.Citation `json:"references" yaml:"references"`
	Usage      types.Usage         `json:"usage" yaml:"usage"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	yamlOut, _ := cmd.Flags().GetBool("yaml")
	markdown, _ := cmd.Flags().GetBool("markdown")
	if jsonOut && yamlOut {
		return fmt.Errorf("--json and --yaml are mutually exclusive")
	}

	o, closeFn, err := buildOrchestrator(cfg, telemetry.LogSink{})
	if err != nil {
		return err
	}
	defer closeFn()

	query := strings.Join(args, " ")
	res, err := o.Answer(cmd.Context(), query, types.ConversationState{}, usageLimits(cfg))
	if err != nil {
		return err
	}

	out := askOutput{Answer: res.Answer, Citations: res.Citations, References: res.References, Usage: res.Usage}
	switch {
	case jsonOut:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case yamlOut:
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(out)
	}
	printAnswer(os.Stdout, res, markdown)
	return nil
}

// printAnswer writes an answer in the chat transcript layout.
func printAnswer(w io.Writer, res agent.Result, markdown bool) {
	fmt.Fprintf(w, "\nAnswer:\n%s\n", res.Answer)
	if len(res.Citations) == 0 {
		return
	}
	fmt.Fprintln(w, "\nCitations:")
	if markdown {
		for _, c := range res.References {
			fmt.Fprintf(w, "- %s\n", c.Markdown())
		}
		return
	}
	for _, c := range res.Citations {
		fmt.Fprintf(w, "- %s\n", c)
	}
}
