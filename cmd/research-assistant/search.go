// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Query the evidence sources directly",
	Long: `Search sends a keyword to PubMed, ClinicalTrials.gov, and MedlinePlus
concurrently, without involving the model. Results are listed per source in
source order; a failing source is reported and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("format", "table", "output format: table, json, or csl")
	searchCmd.Flags().StringSlice("source", nil, "limit to sources: pubmed, clinical_trials, health_topics")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	only, _ := cmd.Flags().GetStringSlice("source")

	sources, closeFn, err := buildSources(cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	sources = filterSources(sources, only)

	out, err := search.Search(cmd.Context(), strings.Join(args, " "), sources, os.Stderr)
	if err != nil {
		return err
	}

	switch format {
	case "table":
		search.FormatTable(out, os.Stdout)
		return nil
	case "json":
		return search.FormatJSON(out, os.Stdout)
	case "csl":
		return search.FormatCSL(out, os.Stdout)
	default:
		return fmt.Errorf("unknown format %q: must be table, json, or csl", format)
	}
}

func filterSources(sources []search.Source, names []string) []search.Source {
	if len(names) == 0 {
		return sources
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[strings.TrimSpace(n)] = true
	}
	var out []search.Source
	for _, s := range sources {
		if keep[s.Name()] {
			out = append(out, s)
		}
	}
	return out
}
