// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation parses and renders the "[n] Title - URL" citation lines
// the model attaches to its answers.
package citation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// ErrMalformedCitation is returned when a citation line does not start
// with "[" or lacks the "] " or " - " delimiter.
var ErrMalformedCitation = errors.New("malformed citation")

const (
	labelSep = "] "
	titleSep = " - "
)

// inlineRefRe matches numeric inline references like [1], [12].
var inlineRefRe = regexp.MustCompile(`\[(\d+)\]`)

// Citation is one parsed citation line.
type Citation struct {
	// Label is the text between the opening bracket and "] ", normally a
	// positive integer.
	Label string `json:"label" yaml:"label"`

	// Index is Label as an integer, or 0 when Label is not numeric.
	Index int `json:"index" yaml:"index"`

	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// Parse splits line on the first "] " and then the first " - ". Titles
// containing " - " are therefore cut at the first occurrence. Whitespace
// at either end of the line is ignored, so a URL never keeps trailing
// spaces.
func Parse(line string) (Citation, error) {
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(line, "[") {
		return Citation{}, fmt.Errorf("%w: missing opening \"[\" in %q", ErrMalformedCitation, line)
	}
	label, rest, ok := strings.Cut(line[1:], labelSep)
	if !ok {
		return Citation{}, fmt.Errorf("%w: missing %q in %q", ErrMalformedCitation, labelSep, line)
	}
	title, url, ok := strings.Cut(rest, titleSep)
	if !ok {
		return Citation{}, fmt.Errorf("%w: missing %q in %q", ErrMalformedCitation, titleSep, line)
	}

	c := Citation{
		Label: label,
		Title: title,
		URL:   url,
	}
	if n, err := strconv.Atoi(c.Label); err == nil && n > 0 {
		c.Index = n
	}
	return c, nil
}

// ParseAll parses every line in order. It stops at the first malformed line.
func ParseAll(lines []string) ([]Citation, error) {
	out := make([]Citation, 0, len(lines))
	for i, line := range lines {
		c, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("citation %d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Format renders the canonical citation line. The title's leading
// whitespace and the URL's trailing whitespace are dropped, matching what
// Parse keeps. Parse inverts Format for titles and URLs that do not
// contain the delimiters.
func Format(n int, title, url string) string {
	title = strings.TrimLeftFunc(title, unicode.IsSpace)
	url = strings.TrimRightFunc(url, unicode.IsSpace)
	return "[" + strconv.Itoa(n) + labelSep + title + titleSep + url
}

// FromEvidence renders a citation line for ev.
func FromEvidence(n int, ev types.Evidence) string {
	return Format(n, ev.Title, ev.URL)
}

// String returns the canonical line.
func (c Citation) String() string {
	return "[" + c.Label + labelSep + c.Title + titleSep + c.URL
}

// Markdown renders the citation with a clickable title: "[n] [Title](URL)".
func (c Citation) Markdown() string {
	return fmt.Sprintf("[%s] [%s](%s)", c.Label, c.Title, c.URL)
}

// Markdown renders citations one per line.
func Markdown(cs []Citation) string {
	lines := make([]string, len(cs))
	for i, c := range cs {
		lines[i] = c.Markdown()
	}
	return strings.Join(lines, "\n")
}

// InlineRefs returns the distinct [n] reference numbers in text, in order
// of first appearance.
func InlineRefs(text string) []int {
	seen := make(map[int]bool)
	var refs []int
	for _, m := range inlineRefRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		refs = append(refs, n)
	}
	return refs
}
