package engine

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/passmed2anki/dom"
)

// AuxiliaryWidgets are stripped from exported HTML: the concept rating
// control and the percentile display.
var AuxiliaryWidgets = []string{
	"#question_concept_rating_div",
	"#question_concept_percentile_div",
	".rate_question_concept",
}

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t]{2,}`)
)

// NormalizeText collapses runs of blank lines to one and runs of spaces or
// tabs to a single space.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	s = blankLines.ReplaceAllString(s, "\n\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Text returns the normalised rendered text of n, "" for nil.
func Text(n dom.Node) string {
	if n == nil {
		return ""
	}
	return NormalizeText(n.InnerText())
}

// CleanHTML returns the inner HTML of a copy of n with every descendant
// matching strip removed, "" for nil.
func CleanHTML(n dom.Node, strip ...string) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerHTML(strip...))
}

// optionItemSelector picks the individual choices inside an option list.
const optionItemSelector = "a.list-group-item, li, [role='option'], .answer-option, .option, label, a"

// OptionsText lists the distinct non-empty option labels under container,
// one per line, in document order.
func OptionsText(container dom.Node) string {
	if container == nil {
		return ""
	}
	seen := make(map[string]bool)
	var lines []string
	for _, n := range container.QueryAll(optionItemSelector) {
		t := Text(n)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		lines = append(lines, t)
	}
	return strings.Join(lines, "\n")
}
