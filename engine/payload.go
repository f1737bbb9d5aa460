package engine

import (
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/passmed2anki/anki"
	"github.com/hazyhaar/passmed2anki/dom"
	"github.com/hazyhaar/passmed2anki/settings"
)

// ErrMissingField is returned when the question or the explanation HTML is
// empty at export time.
var ErrMissingField = errors.New("engine: missing question or explanation")

// ProvenanceTag is always attached to exported notes.
const ProvenanceTag = "passmedicine"

const (
	frontSelector = "#question_only"
	backSeparator = "<br><br>"
)

// PayloadBuilder turns the answered page into an addNote request.
type PayloadBuilder struct {
	// Policy sanitises every exported HTML fragment. Nil keeps the page
	// markup untouched.
	Policy *bluemonday.Policy
}

// SanitizingBuilder returns a builder using bluemonday's UGC policy with
// inline styles allowed, so result colouring survives.
func SanitizingBuilder() PayloadBuilder {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("style").Globally()
	return PayloadBuilder{Policy: p}
}

// Fields holds the raw HTML parts of a note before assembly.
type Fields struct {
	Question    string
	Correct     string
	Explanation string
}

// Extract reads the exportable fragments from doc.
func (b PayloadBuilder) Extract(doc dom.Document) Fields {
	return Fields{
		Question:    b.clean(CleanHTML(doc.Query(frontSelector))),
		Correct:     b.clean(correctOptionHTML(doc)),
		Explanation: b.clean(explanationHTML(doc)),
	}
}

// Build assembles the request. It fails with ErrMissingField when the
// question or the explanation is empty; the correct option is optional.
func (b PayloadBuilder) Build(doc dom.Document, s settings.Settings) (*anki.NoteRequest, error) {
	f := b.Extract(doc)
	if f.Question == "" || f.Explanation == "" {
		return nil, ErrMissingField
	}

	var back []string
	for _, part := range []string{f.Correct, f.Explanation} {
		if part != "" {
			back = append(back, part)
		}
	}

	s = s.Normalize()
	return anki.NewAddNote(anki.Note{
		DeckName:  s.DeckName,
		ModelName: s.NoteType,
		Fields: anki.Fields{
			Front: f.Question,
			Back:  strings.Join(back, backSeparator),
		},
		Tags: noteTags(s.TagList()),
	}), nil
}

func (b PayloadBuilder) clean(html string) string {
	if b.Policy == nil || html == "" {
		return html
	}
	return strings.TrimSpace(b.Policy.Sanitize(html))
}

// correctOptionHTML returns the label of the first green option, preferring
// its first span so the percentage badge is left out.
func correctOptionHTML(doc dom.Document) string {
	root := questionRoot(doc)
	if root == nil {
		return ""
	}
	for _, opt := range root.QueryAll("a.list-group-item") {
		if !styledAs(opt, correctStyleMarkers, correctClasses) {
			continue
		}
		if label := opt.Query("span"); label != nil {
			return CleanHTML(label)
		}
		return CleanHTML(opt)
	}
	return ""
}

// explanationHTML returns the cleaned result alert: success, then danger,
// then any alert role.
func explanationHTML(doc dom.Document) string {
	for _, list := range [][]string{successAlerts, dangerAlerts, genericAlerts} {
		if n := FirstVisible(doc, list); n != nil {
			return CleanHTML(n, AuxiliaryWidgets...)
		}
	}
	return ""
}

func noteTags(configured []string) []string {
	seen := make(map[string]bool, len(configured)+1)
	out := make([]string, 0, len(configured)+1)
	for _, t := range append(configured, ProvenanceTag) {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
