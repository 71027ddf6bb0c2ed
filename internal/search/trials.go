// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// trialsAPIBase is the ClinicalTrials.gov v2 API root. Declared as a var
// so tests can substitute an httptest server.
var trialsAPIBase = "https://clinicaltrials.gov/api/v2"

const trialsStudyBase = "https://clinicaltrials.gov/study/"

const (
	trialsDefaultMax      = 5
	trialsDefaultOutcomes = 3
	// trialsPageSize over-fetches because studies without results are discarded.
	trialsPageSize = 20
)

// TrialOutcome is one primary outcome measure of a completed study.
type TrialOutcome struct {
	Measure     string `json:"measure" yaml:"measure"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	TimeFrame   string `json:"time_frame,omitempty" yaml:"time_frame,omitempty"`
}

// TrialsSource searches completed studies on ClinicalTrials.gov.
type TrialsSource struct {
	Client *http.Client
	HTTP   types.HTTPConfig
	Config types.TrialsConfig
}

// Name returns the source identifier.
func (s *TrialsSource) Name() string { return "clinical_trials" }

// Search returns completed studies with posted results, most relevant
// first. Each record keeps the last Config.MaxOutcomes primary outcomes in
// Extra["primary_outcomes"].
func (s *TrialsSource) Search(ctx context.Context, keyword string) ([]types.Evidence, error) {
	max := s.Config.MaxResults
	if max <= 0 {
		max = trialsDefaultMax
	}
	outcomes := s.Config.MaxOutcomes
	if outcomes <= 0 {
		outcomes = trialsDefaultOutcomes
	}

	params := url.Values{}
	params.Set("query.term", keyword)
	params.Set("filter.overallStatus", "COMPLETED")
	params.Set("sort", "@relevance")
	params.Set("pageSize", strconv.Itoa(trialsPageSize))
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trialsAPIBase+"/studies?"+params.Encode(), nil)
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if s.HTTP.UserAgent != "" {
		req.Header.Set("User-Agent", s.HTTP.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.HTTP.MaxRetries)
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("ClinicalTrials.gov API request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(s.Name(), fmt.Errorf("ClinicalTrials.gov API returned HTTP %d", resp.StatusCode))
	}

	var page trialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("parsing ClinicalTrials.gov response: %w", err))
	}

	var results []types.Evidence
	for _, st := range page.Studies {
		if !st.HasResults {
			continue
		}
		results = append(results, st.toEvidence(outcomes))
	}
	return citable(results, max), nil
}

// --- ClinicalTrials.gov JSON response types ---

type trialsResponse struct {
	Studies []trialsStudy `json:"studies"`
}

type trialsStudy struct {
	Protocol struct {
		Identification struct {
			NCTID         string `json:"nctId"`
			BriefTitle    string `json:"briefTitle"`
			OfficialTitle string `json:"officialTitle"`
		} `json:"identificationModule"`
		Status struct {
			OverallStatus string `json:"overallStatus"`
		} `json:"statusModule"`
		Description struct {
			BriefSummary string `json:"briefSummary"`
		} `json:"descriptionModule"`
		Outcomes struct {
			Primary []TrialOutcome `json:"primaryOutcomes"`
		} `json:"outcomesModule"`
	} `json:"protocolSection"`
	HasResults bool `json:"hasResults"`
}

func (st trialsStudy) toEvidence(maxOutcomes int) types.Evidence {
	id := st.Protocol.Identification
	title := strings.TrimSpace(id.BriefTitle)
	if title == "" {
		title = strings.TrimSpace(id.OfficialTitle)
	}

	ev := types.Evidence{
		Title:   title,
		Summary: strings.TrimSpace(st.Protocol.Description.BriefSummary),
		Source:  "clinical_trials",
		Extra: map[string]any{
			"nct_id":           id.NCTID,
			"primary_outcomes": lastOutcomes(st.Protocol.Outcomes.Primary, maxOutcomes),
		},
	}
	if id.NCTID != "" {
		ev.URL = trialsStudyBase + id.NCTID
	}
	if status := st.Protocol.Status.OverallStatus; status != "" {
		ev.Extra["status"] = status
	}
	return ev
}

// lastOutcomes returns at most n trailing outcomes, never nil.
func lastOutcomes(all []TrialOutcome, n int) []TrialOutcome {
	if len(all) > n {
		all = all[len(all)-n:]
	}
	out := make([]TrialOutcome, len(all))
	copy(out, all)
	return out
}
