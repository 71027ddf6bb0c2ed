// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// --- mock source ---

type mockSource struct {
	name    string
	results []types.Evidence
	err     error
	delay   time.Duration
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Search(ctx context.Context, _ string) ([]types.Evidence, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.results, m.err
}

func ev(source, title string) types.Evidence {
	return types.Evidence{Title: title, URL: "http://ex/" + title, Source: source}
}

// --- citable ---

func TestCitableDropsIncompleteAndTruncates(t *testing.T) {
	in := []types.Evidence{
		ev("x", "a"),
		{Title: "no url"},
		{URL: "http://no-title"},
		ev("x", "b"),
		ev("x", "c"),
	}

	out := citable(in, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Title)
	assert.Equal(t, "b", out[1].Title)

	assert.NotNil(t, citable(nil, 5), "empty input yields an empty slice, not nil")
}

func TestUnavailableWraps(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := unavailable("pubmed", cause)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "pubmed")
}

// --- Search ---

func TestSearchConcatenatesInSourceOrder(t *testing.T) {
	sources := []Source{
		&mockSource{name: "slow", results: []types.Evidence{ev("slow", "s1")}, delay: 30 * time.Millisecond},
		&mockSource{name: "fast", results: []types.Evidence{ev("fast", "f1"), ev("fast", "f2")}, delay: 10 * time.Millisecond},
	}

	var warn bytes.Buffer
	out, err := Search(context.Background(), "hairfall", sources, &warn)
	require.NoError(t, err)
	require.Len(t, out.Results, 3)
	assert.Equal(t, "s1", out.Results[0].Title)
	assert.Equal(t, "f1", out.Results[1].Title)
	assert.Empty(t, out.SourceErrors)
	assert.Empty(t, warn.String())
}

func TestSearchKeepsDuplicates(t *testing.T) {
	sources := []Source{
		&mockSource{name: "a", results: []types.Evidence{ev("a", "same")}},
		&mockSource{name: "b", results: []types.Evidence{ev("a", "same")}},
	}
	out, err := Search(context.Background(), "x", sources, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, out.Results, 2)
}

func TestSearchSourceFailureIsReported(t *testing.T) {
	sources := []Source{
		&mockSource{name: "ok", results: []types.Evidence{ev("ok", "r")}},
		&mockSource{name: "bad", err: unavailable("bad", errors.New("HTTP 500"))},
	}

	var warn bytes.Buffer
	out, err := Search(context.Background(), "x", sources, &warn)
	require.NoError(t, err)
	assert.Len(t, out.Results, 1)
	require.Len(t, out.SourceErrors, 1)
	assert.Contains(t, out.SourceErrors[0], "bad")
	assert.Contains(t, warn.String(), "warning: source bad failed")
}

func TestSearchValidation(t *testing.T) {
	_, err := Search(context.Background(), "  ", []Source{&mockSource{name: "a"}}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "keyword is empty")

	_, err = Search(context.Background(), "x", nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, "no evidence sources")
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Search(ctx, "x", []Source{&mockSource{name: "a", delay: time.Second}}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSourcesHonoursEnabled(t *testing.T) {
	cfg := types.DefaultConfig().Sources
	assert.Len(t, NewSources(cfg), 3)

	cfg.Trials.Enabled = false
	sources := NewSources(cfg)
	require.Len(t, sources, 2)
	assert.Equal(t, "pubmed", sources[0].Name())
	assert.Equal(t, "health_topics", sources[1].Name())
}

// --- Formatting ---

func TestFormatTable(t *testing.T) {
	out := SearchOutput{
		Results: []types.Evidence{
			{Title: "Androgenetic Alopecia Review", URL: "http://ex/1", Authors: []string{"Jane Smith", "Wei Chen"}, Source: "pubmed"},
		},
		SourceErrors: []string{"clinical_trials: down"},
	}
	var buf bytes.Buffer
	FormatTable(out, &buf)

	s := buf.String()
	assert.Contains(t, s, "Androgenetic Alopecia Review")
	assert.Contains(t, s, "Jane Smith et al.")
	assert.Contains(t, s, "1 results (1 sources unavailable)")
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(SearchOutput{}, &buf)
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	out := SearchOutput{Results: []types.Evidence{ev("pubmed", "a")}}
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(out, &buf))

	var got []types.Evidence
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "http://ex/a", got[0].URL)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
