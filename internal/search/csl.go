// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-YAML schema so the
// output can be loaded by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	URL            string    `yaml:"URL"`
	Number         string    `yaml:"number,omitempty"`
	Publisher      string    `yaml:"publisher,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes search results as a CSL-YAML list to w.
func FormatCSL(out SearchOutput, w io.Writer) error {
	items := make([]CSLItem, len(out.Results))
	for i, r := range out.Results {
		items[i] = toCSLItem(r, i+1)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts an Evidence record to a CSLItem. The item type
// follows the source: journal articles, trial reports, or web pages.
func toCSLItem(ev types.Evidence, n int) CSLItem {
	item := CSLItem{
		ID:       fmt.Sprintf("%s-%d", ev.Source, n),
		Type:     "webpage",
		Title:    ev.Title,
		Abstract: ev.Summary,
		URL:      ev.URL,
	}

	for _, a := range ev.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	switch ev.Source {
	case "pubmed":
		item.Type = "article-journal"
		if pmid, ok := ev.Extra["pmid"].(string); ok && pmid != "" {
			item.ID = "pmid:" + pmid
		}
		if j, ok := ev.Extra["journal"].(string); ok {
			item.ContainerTitle = j
		}
		if y := year(ev.Extra["year"]); y > 0 {
			item.Issued = &CSLDate{DateParts: [][]int{{y}}}
		}
	case "clinical_trials":
		item.Type = "report"
		item.Publisher = "ClinicalTrials.gov"
		if id, ok := ev.Extra["nct_id"].(string); ok && id != "" {
			item.ID = id
			item.Number = id
		}
	case "health_topics":
		item.Publisher = "MedlinePlus"
	}

	return item
}

// year accepts the int set by PubMedSource and the float64 a JSON
// round trip through the evidence cache produces.
func year(v any) int {
	switch y := v.(type) {
	case int:
		return y
	case float64:
		return int(y)
	}
	return 0
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
