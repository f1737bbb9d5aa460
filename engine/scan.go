package engine

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/passmed2anki/dom"
)

// containerSelector lists the structural elements the scanner considers.
const containerSelector = "section, article, main, aside, details, div"

// Candidate is a scored region found by the scanner.
type Candidate struct {
	Node  dom.Node
	Text  string
	Score float64
}

// Candidates returns every visible container under root whose normalised
// text length lies in [minChars, maxChars] and contains one of keywords
// (case-insensitive; an empty list accepts all). The result is sorted by
// descending score; equal scores keep document order.
func (h Heuristics) Candidates(root dom.Node, keywords []string, minChars, maxChars int) []Candidate {
	if root == nil {
		return nil
	}
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		kw = append(kw, strings.ToLower(k))
	}

	var out []Candidate
	for _, n := range root.QueryAll(containerSelector) {
		if !n.Visible() {
			continue
		}
		text := Text(n)
		if text == "" {
			continue
		}
		length := utf8.RuneCountInString(text)
		if length < minChars || length > maxChars {
			continue
		}
		if len(kw) > 0 && !containsAny(strings.ToLower(text), kw) {
			continue
		}
		out = append(out, Candidate{Node: n, Text: text, Score: h.Score(n.Depth(), length)})
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// Scan returns the best candidate under root, or false when none qualify.
func (h Heuristics) Scan(root dom.Node, keywords []string, minChars, maxChars int) (Candidate, bool) {
	c := h.Candidates(root, keywords, minChars, maxChars)
	if len(c) == 0 {
		return Candidate{}, false
	}
	return c[0], true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
