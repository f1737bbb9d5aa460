package engine

import "github.com/hazyhaar/passmed2anki/dom"

// Located is a region found for a role.
type Located struct {
	Role Role
	Node dom.Node
	Text string
	// Heuristic is set when the catalog had no visible match and the
	// scanner picked the node.
	Heuristic bool
}

// Locate finds the region for role. The catalog is tried first; the
// scanner only runs when it yields nothing visible. Option lists have no
// heuristic fallback and their Text is the de-duplicated option labels.
func (c *Controller) Locate(role Role) Located {
	loc := Located{Role: role}
	if n := c.catalog.FindVisible(c.doc, role); n != nil {
		loc.Node = n
	} else {
		loc.Node, loc.Heuristic = c.scan(role)
	}

	if role == OptionList {
		loc.Text = OptionsText(loc.Node)
	} else {
		loc.Text = Text(loc.Node)
	}
	return loc
}

func (c *Controller) scan(role Role) (dom.Node, bool) {
	h := c.heuristics
	var kw []string
	var lo, hi int
	switch role {
	case Question:
		kw, lo, hi = h.QuestionKeywords, h.MinQuestionChars, h.MaxQuestionChars
	case Answer:
		kw, lo, hi = h.AnswerKeywords, h.MinAnswerChars, h.MaxAnswerChars
	default:
		return nil, false
	}

	cands := h.Candidates(c.doc.Body(), kw, lo, hi)
	if len(cands) == 0 {
		c.logger.Debug("engine: heuristic found nothing", "role", role.String())
		return nil, false
	}
	c.logger.Debug("engine: heuristic result",
		"role", role.String(), "candidates", len(cands), "top_score", cands[0].Score)
	return cands[0].Node, true
}
