// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// healthTopicsAPIBase is the MedlinePlus web service endpoint. Declared as
// a var so tests can substitute an httptest server.
var healthTopicsAPIBase = "https://wsearch.nlm.nih.gov/ws/query"

const healthTopicsDefaultMax = 5

// HealthTopicsSource searches MedlinePlus consumer health topics.
type HealthTopicsSource struct {
	Client *http.Client
	HTTP   types.HTTPConfig
	Config types.HealthTopicsConfig
}

// Name returns the source identifier.
func (s *HealthTopicsSource) Name() string { return "health_topics" }

// Search returns health topics matching keyword. Titles and summaries
// arrive as HTML fragments inside the XML and are reduced to plain text.
func (s *HealthTopicsSource) Search(ctx context.Context, keyword string) ([]types.Evidence, error) {
	max := s.Config.MaxResults
	if max <= 0 {
		max = healthTopicsDefaultMax
	}

	params := url.Values{}
	params.Set("db", "healthTopics")
	params.Set("term", keyword)
	params.Set("retmax", strconv.Itoa(max))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthTopicsAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("creating request: %w", err))
	}
	if s.HTTP.UserAgent != "" {
		req.Header.Set("User-Agent", s.HTTP.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.HTTP.MaxRetries)
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("MedlinePlus API request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(s.Name(), fmt.Errorf("MedlinePlus API returned HTTP %d", resp.StatusCode))
	}

	var result medlineResult
	if err := xml.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("parsing MedlinePlus response: %w", err))
	}

	var results []types.Evidence
	for _, doc := range result.Documents {
		results = append(results, doc.toEvidence())
	}
	return citable(results, max), nil
}

// --- MedlinePlus XML response types ---

type medlineResult struct {
	Documents []medlineDocument `xml:"list>document"`
}

type medlineDocument struct {
	URL     string           `xml:"url,attr"`
	Content []medlineContent `xml:"content"`
}

type medlineContent struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

func (d medlineDocument) field(name string) string {
	for _, c := range d.Content {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (d medlineDocument) toEvidence() types.Evidence {
	summary := d.field("FullSummary")
	if strings.TrimSpace(summary) == "" {
		summary = d.field("snippet")
	}
	return types.Evidence{
		Title:   plainText(d.field("title")),
		Summary: plainText(summary),
		URL:     strings.TrimSpace(d.URL),
		Source:  "health_topics",
	}
}
