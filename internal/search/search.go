// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search normalizes external biomedical knowledge sources into
// types.Evidence records.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// ErrSourceUnavailable reports a transport or parse failure in a source.
// Callers treat it as "no evidence" rather than a fatal error.
var ErrSourceUnavailable = errors.New("source unavailable")

// Source searches a single knowledge source by keyword. Implementations
// return an empty slice (not an error) when nothing matches, and only
// return citable records.
type Source interface {
	Name() string
	Search(ctx context.Context, keyword string) ([]types.Evidence, error)
}

// unavailable wraps err so that errors.Is(err, ErrSourceUnavailable) holds.
func unavailable(source string, err error) error {
	return fmt.Errorf("%s: %w: %w", source, ErrSourceUnavailable, err)
}

// citable drops records missing a title or URL and truncates to max.
func citable(records []types.Evidence, max int) []types.Evidence {
	out := make([]types.Evidence, 0, len(records))
	for _, r := range records {
		if !r.Citable() {
			continue
		}
		out = append(out, r)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// NewSources builds the enabled sources from cfg, sharing one HTTP client.
func NewSources(cfg types.SourcesConfig) []Source {
	client := &http.Client{Timeout: cfg.Timeout}

	var sources []Source
	if cfg.PubMed.Enabled {
		sources = append(sources, &PubMedSource{Client: client, HTTP: cfg.HTTPConfig, Config: cfg.PubMed})
	}
	if cfg.Trials.Enabled {
		sources = append(sources, &TrialsSource{Client: client, HTTP: cfg.HTTPConfig, Config: cfg.Trials})
	}
	if cfg.HealthTopics.Enabled {
		sources = append(sources, &HealthTopicsSource{Client: client, HTTP: cfg.HTTPConfig, Config: cfg.HealthTopics})
	}
	return sources
}

// SearchOutput holds the combined evidence and the sources that failed.
type SearchOutput struct {
	Results      []types.Evidence `json:"results"`
	SourceErrors []string         `json:"source_errors,omitempty"`
}

// Search fans the keyword out to all sources concurrently and concatenates
// their evidence in source order. A failing source is reported in
// SourceErrors and as a warning on w; it does not fail the search.
// Results are not deduplicated or re-ranked.
func Search(ctx context.Context, keyword string, sources []Source, w io.Writer) (SearchOutput, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return SearchOutput{}, fmt.Errorf("keyword is empty")
	}
	if len(sources) == 0 {
		return SearchOutput{}, fmt.Errorf("no evidence sources configured")
	}

	results := make([][]types.Evidence, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sources {
		g.Go(func() error {
			results[i], errs[i] = s.Search(gctx, keyword)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return SearchOutput{}, err
	}

	var out SearchOutput
	for i, s := range sources {
		if errs[i] != nil {
			out.SourceErrors = append(out.SourceErrors, fmt.Sprintf("%s: %v", s.Name(), errs[i]))
			fmt.Fprintf(w, "warning: source %s failed: %v\n", s.Name(), errs[i])
			continue
		}
		out.Results = append(out.Results, results[i]...)
	}
	return out, nil
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(out SearchOutput, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-14s  %s\n", "#", "Title", "Authors", "Source", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for i, r := range out.Results {
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-14s  %s\n",
			i+1, truncate(r.Title, 60), formatAuthors(r.Authors), r.Source, r.URL)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Results))
	if n := len(out.SourceErrors); n > 0 {
		fmt.Fprintf(w, " (%d sources unavailable)", n)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(out SearchOutput, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Results)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
