// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestToCSLItemPubMed(t *testing.T) {
	ev := types.Evidence{
		Title:   "Androgenetic Alopecia Review",
		Summary: "Hair loss is common.",
		URL:     "https://pubmed.ncbi.nlm.nih.gov/111/",
		Authors: []string{"Jane Smith", "Plato"},
		Source:  "pubmed",
		Extra:   map[string]any{"pmid": "111", "journal": "J Derm", "year": 2021},
	}

	item := toCSLItem(ev, 1)

	assert.Equal(t, "pmid:111", item.ID)
	assert.Equal(t, "article-journal", item.Type)
	assert.Equal(t, "J Derm", item.ContainerTitle)
	require.NotNil(t, item.Issued)
	assert.Equal(t, [][]int{{2021}}, item.Issued.DateParts)
	require.Len(t, item.Author, 2)
	assert.Equal(t, CSLName{Given: "Jane", Family: "Smith"}, item.Author[0])
	assert.Equal(t, CSLName{Literal: "Plato"}, item.Author[1])
}

func TestToCSLItemCachedYear(t *testing.T) {
	ev := types.Evidence{Title: "T", URL: "http://t", Source: "pubmed", Extra: map[string]any{"year": float64(2019)}}
	item := toCSLItem(ev, 1)
	require.NotNil(t, item.Issued)
	assert.Equal(t, [][]int{{2019}}, item.Issued.DateParts)
}

func TestToCSLItemTrial(t *testing.T) {
	ev := types.Evidence{
		Title:  "Minoxidil for Hair Loss",
		URL:    "https://clinicaltrials.gov/study/NCT00000001",
		Source: "clinical_trials",
		Extra:  map[string]any{"nct_id": "NCT00000001"},
	}

	item := toCSLItem(ev, 2)

	assert.Equal(t, "report", item.Type)
	assert.Equal(t, "NCT00000001", item.ID)
	assert.Equal(t, "NCT00000001", item.Number)
	assert.Equal(t, "ClinicalTrials.gov", item.Publisher)
	assert.Nil(t, item.Issued)
}

func TestToCSLItemHealthTopic(t *testing.T) {
	item := toCSLItem(types.Evidence{Title: "Hair Loss", URL: "https://medlineplus.gov/hairloss.html", Source: "health_topics"}, 3)
	assert.Equal(t, "webpage", item.Type)
	assert.Equal(t, "health_topics-3", item.ID)
	assert.Equal(t, "MedlinePlus", item.Publisher)
}

func TestFormatCSL(t *testing.T) {
	out := SearchOutput{Results: []types.Evidence{
		{Title: "A", URL: "http://a", Source: "health_topics"},
		{Title: "B", URL: "http://b", Source: "pubmed", Extra: map[string]any{"pmid": "7"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, FormatCSL(out, &buf))

	var items []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "http://a", items[0]["URL"])
	assert.Equal(t, "pmid:7", items[1]["id"])
	assert.NotContains(t, buf.String(), "DOI")
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want CSLName
	}{
		{"Jane Smith", CSLName{Given: "Jane", Family: "Smith"}},
		{"Mary Ann Lee", CSLName{Given: "Mary Ann", Family: "Lee"}},
		{"Plato", CSLName{Literal: "Plato"}},
		{"  ", CSLName{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseAuthorName(tt.in), tt.in)
	}
}
