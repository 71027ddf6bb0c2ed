// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/internal/logging"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// pubmedAPIBase is the NCBI E-utilities root. Declared as a var so tests
// can substitute an httptest server.
var pubmedAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// pubmedArticleBase is the public article page prefix used for citations.
const pubmedArticleBase = "https://pubmed.ncbi.nlm.nih.gov/"

const pubmedDefaultMax = 5

// PubMedSource searches the PubMed literature database through E-utilities:
// esearch for matching PMIDs, then efetch for each record.
type PubMedSource struct {
	Client *http.Client
	HTTP   types.HTTPConfig
	Config types.PubMedConfig
}

// Name returns the source identifier.
func (s *PubMedSource) Name() string { return "pubmed" }

// Search returns up to Config.MaxResults articles for keyword. A record
// that cannot be fetched or has no title is skipped; only the esearch
// step can make the whole call fail.
func (s *PubMedSource) Search(ctx context.Context, keyword string) ([]types.Evidence, error) {
	max := s.Config.MaxResults
	if max <= 0 {
		max = pubmedDefaultMax
	}

	pmids, err := s.esearch(ctx, keyword, max)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}

	log := logging.FromContext(ctx)
	var results []types.Evidence
	for _, pmid := range pmids {
		ev, err := s.efetch(ctx, pmid)
		if err != nil {
			if ctx.Err() != nil {
				return nil, unavailable(s.Name(), ctx.Err())
			}
			log.Debug("skipping pubmed record", "pmid", pmid, "error", err)
			continue
		}
		results = append(results, ev)
	}
	return citable(results, max), nil
}

// --- esearch ---

type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

func (s *PubMedSource) esearch(ctx context.Context, keyword string, max int) ([]string, error) {
	params := s.baseParams()
	params.Set("term", keyword)
	params.Set("retmax", strconv.Itoa(max))
	params.Set("retmode", "json")

	var out esearchResponse
	if err := s.get(ctx, "/esearch.fcgi", params, func(resp *http.Response) error {
		return json.NewDecoder(resp.Body).Decode(&out)
	}); err != nil {
		return nil, err
	}
	return out.Result.IDList, nil
}

// --- efetch ---

type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    innerXML `xml:"ArticleTitle"`
			Abstract struct {
				Texts []pubmedAbstractText `xml:"AbstractText"`
			} `xml:"Abstract"`
			Authors []pubmedAuthor `xml:"AuthorList>Author"`
			Journal struct {
				Title string `xml:"Title"`
				Year  string `xml:"JournalIssue>PubDate>Year"`
			} `xml:"Journal"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
}

type pubmedAbstractText struct {
	Label string `xml:"Label,attr"`
	Body  string `xml:",innerxml"`
}

type pubmedAuthor struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	CollectiveName string `xml:"CollectiveName"`
}

type innerXML struct {
	Body string `xml:",innerxml"`
}

func (s *PubMedSource) efetch(ctx context.Context, pmid string) (types.Evidence, error) {
	params := s.baseParams()
	params.Set("id", pmid)
	params.Set("retmode", "xml")

	var set pubmedArticleSet
	if err := s.get(ctx, "/efetch.fcgi", params, func(resp *http.Response) error {
		return xml.NewDecoder(resp.Body).Decode(&set)
	}); err != nil {
		return types.Evidence{}, err
	}
	if len(set.Articles) == 0 {
		return types.Evidence{}, fmt.Errorf("no article for PMID %s", pmid)
	}
	return toEvidence(set.Articles[0], pmid), nil
}

// toEvidence maps one efetch record. The abstract is the labelled
// sections joined by blank lines, or "" when the record has none.
func toEvidence(a pubmedArticle, pmid string) types.Evidence {
	art := a.Citation.Article
	if a.Citation.PMID != "" {
		pmid = a.Citation.PMID
	}

	var sections []string
	for _, t := range art.Abstract.Texts {
		text := plainText(t.Body)
		if text == "" {
			continue
		}
		if t.Label != "" {
			text = t.Label + ": " + text
		}
		sections = append(sections, text)
	}

	ev := types.Evidence{
		Title:   plainText(art.Title.Body),
		Summary: strings.Join(sections, "\n\n"),
		URL:     pubmedArticleBase + pmid + "/",
		Source:  "pubmed",
		Extra:   map[string]any{"pmid": pmid},
	}
	for _, au := range art.Authors {
		if name := au.name(); name != "" {
			ev.Authors = append(ev.Authors, name)
		}
	}
	if art.Journal.Title != "" {
		ev.Extra["journal"] = art.Journal.Title
	}
	if y, err := strconv.Atoi(art.Journal.Year); err == nil {
		ev.Extra["year"] = y
	}
	return ev
}

func (a pubmedAuthor) name() string {
	if a.CollectiveName != "" {
		return strings.TrimSpace(a.CollectiveName)
	}
	return strings.TrimSpace(a.ForeName + " " + a.LastName)
}

// --- transport ---

func (s *PubMedSource) baseParams() url.Values {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("tool", "research-assistant")
	if s.Config.APIKey != "" {
		params.Set("api_key", s.Config.APIKey)
	}
	if s.Config.Email != "" {
		params.Set("email", s.Config.Email)
	}
	return params
}

func (s *PubMedSource) get(ctx context.Context, path string, params url.Values, decode func(*http.Response) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedAPIBase+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if s.HTTP.UserAgent != "" {
		req.Header.Set("User-Agent", s.HTTP.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.HTTP.MaxRetries)
	if err != nil {
		return fmt.Errorf("PubMed API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("PubMed API returned HTTP %d", resp.StatusCode)
	}
	if err := decode(resp); err != nil {
		return fmt.Errorf("parsing PubMed response: %w", err)
	}
	return nil
}
