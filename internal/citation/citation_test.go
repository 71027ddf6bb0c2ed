// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Citation
	}{
		{
			"canonical",
			"[1] Androgenetic Alopecia Review - http://ex/1",
			Citation{Label: "1", Index: 1, Title: "Androgenetic Alopecia Review", URL: "http://ex/1"},
		},
		{
			"surrounding whitespace",
			"  [12] Title - https://pubmed.ncbi.nlm.nih.gov/1/ \n",
			Citation{Label: "12", Index: 12, Title: "Title", URL: "https://pubmed.ncbi.nlm.nih.gov/1/"},
		},
		{
			"title split at first separator",
			"[2] Hair - Loss - http://ex/2",
			Citation{Label: "2", Index: 2, Title: "Hair", URL: "Loss - http://ex/2"},
		},
		{
			"non numeric label",
			"[a] Title - http://x",
			Citation{Label: "a", Title: "Title", URL: "http://x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, line := range []string{
		"No delimiter here",
		"[1] Title without url",
		"[1]Title - http://x",
		"1] Title - http://x",
		"(1) Title - http://x",
		"",
	} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrMalformedCitation, line)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	titles := []string{"Androgenetic Alopecia Review", "A", "Hair-loss: causes & treatment", "Über [study]"}
	urls := []string{"http://ex/1", "https://clinicaltrials.gov/study/NCT00000001", "u"}

	for n := 1; n <= 3; n++ {
		for _, title := range titles {
			for _, url := range urls {
				line := Format(n, title, url)
				c, err := Parse(line)
				require.NoError(t, err, line)
				assert.Equal(t, n, c.Index)
				assert.Equal(t, title, c.Title)
				assert.Equal(t, url, c.URL)
				assert.Equal(t, line, c.String())
			}
		}
	}
}

func TestFormatParseRoundTripUntrimmed(t *testing.T) {
	tests := []struct {
		title, url string
		wantTitle  string
		wantURL    string
	}{
		{"Title", "http://ex/1 ", "Title", "http://ex/1"},
		{"  Title", "http://ex/1", "Title", "http://ex/1"},
		{"Title ", " http://ex/1\t\n", "Title ", " http://ex/1"},
	}
	for _, tt := range tests {
		line := Format(1, tt.title, tt.url)
		c, err := Parse(line)
		require.NoError(t, err, line)
		assert.Equal(t, tt.wantTitle, c.Title)
		assert.Equal(t, tt.wantURL, c.URL)
		assert.Equal(t, line, c.String(), "formatted lines are canonical")
	}
}

func TestParseAll(t *testing.T) {
	cs, err := ParseAll([]string{"[1] A - http://a", "[2] B - http://b"})
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, "B", cs[1].Title)

	_, err = ParseAll([]string{"[1] A - http://a", "broken"})
	assert.ErrorIs(t, err, ErrMalformedCitation)
	assert.Contains(t, err.Error(), "citation 2")

	cs, err = ParseAll(nil)
	require.NoError(t, err)
	assert.Empty(t, cs)
}

func TestMarkdown(t *testing.T) {
	cs := []Citation{
		{Label: "1", Index: 1, Title: "Androgenetic Alopecia Review", URL: "http://ex/1"},
		{Label: "2", Index: 2, Title: "Hair Loss", URL: "https://medlineplus.gov/hairloss.html"},
	}
	assert.Equal(t,
		"[1] [Androgenetic Alopecia Review](http://ex/1)\n[2] [Hair Loss](https://medlineplus.gov/hairloss.html)",
		Markdown(cs))
}

func TestFromEvidence(t *testing.T) {
	ev := types.Evidence{Title: "T", URL: "http://t"}
	assert.Equal(t, "[3] T - http://t", FromEvidence(3, ev))
}

func TestInlineRefs(t *testing.T) {
	tests := []struct {
		text string
		want []int
	}{
		{"Hair loss is linked to androgens [1].", []int{1}},
		{"A [2], B [1], again [2] and [10].", []int{2, 1, 10}},
		{"No refs [a] here.", nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, InlineRefs(tt.text))
		})
	}
}
