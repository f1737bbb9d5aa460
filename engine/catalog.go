package engine

import "github.com/hazyhaar/passmed2anki/dom"

// Role is the semantic type of a page region.
type Role int

const (
	Question Role = iota
	Answer
	OptionList
)

func (r Role) String() string {
	switch r {
	case Question:
		return "question"
	case Answer:
		return "answer"
	case OptionList:
		return "options"
	default:
		return "unknown"
	}
}

// Catalog maps each role to its selectors in priority order.
type Catalog map[Role][]string

// DefaultCatalog returns the selectors for the known Passmedicine layouts.
func DefaultCatalog() Catalog {
	return Catalog{
		Question: {
			"#question_only",
			"#div_question #question_only",
			"#div_question",
			"[data-component='question-body']",
			".question-stem",
			".question-text",
			"#question-body",
			".questionBody",
			".question",
			"main article",
			"[class*='question'] [class*='body']",
			"[data-cy='question-text']",
			"article [class*='prompt']",
		},
		Answer: {
			"#div_question .alert.alert-success",
			"#div_question .alert-success",
			".alert.alert-success",
			"#div_question .alert.alert-danger",
			"#div_question .alert-danger",
			".alert.alert-danger",
			"[data-component='answer']",
			".answer-reveal",
			"#answer",
			".answer",
			".explanation",
			".rationale",
			".answer-panel",
			"[class*='explanation']",
			"[data-cy='answer']",
			"details[open] .accordion-body",
		},
		OptionList: {
			"#div_question .list-group",
			"#div_question .list-group-item",
			".list-group",
			"[data-component='answer-options']",
			".answers-list",
			".answer-options",
			".option-list",
			".options",
			"ul",
			"ol",
			"[data-cy='answer-options']",
			"[class*='choices']",
		},
	}
}

// FindVisible returns the first visible match for role: selector order
// first, then document order. Nil when nothing visible matches.
func (c Catalog) FindVisible(doc dom.Document, role Role) dom.Node {
	return FirstVisible(doc, c[role])
}

// FirstVisible walks selectors in order and returns the first visible match.
func FirstVisible(doc dom.Document, selectors []string) dom.Node {
	for _, sel := range selectors {
		if sel == "" {
			continue
		}
		for _, n := range doc.QueryAll(sel) {
			if n.Visible() {
				return n
			}
		}
	}
	return nil
}

func visible(n dom.Node) bool {
	return n != nil && n.Visible()
}
