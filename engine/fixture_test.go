package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"golang.org/x/net/html"

	"github.com/hazyhaar/passmed2anki/anki"
	"github.com/hazyhaar/passmed2anki/dom"
	"github.com/hazyhaar/passmed2anki/dom/htmldoc"
)

const questionText = "What is the first-line treatment for X?"

// alertText80 is exactly 80 characters long.
var alertText80 = "Correct answer: Y. " + strings.Repeat("x", 61)

// quizPage describes one state of a quiz page.
type quizPage struct {
	Alert         string // "", "success" or "danger"
	AlertHidden   bool
	Styled        bool
	Badge         bool
	SubmitVisible bool
	Rating        bool
}

func (p quizPage) html() string {
	optStyle := ""
	if p.Styled {
		optStyle = ` style="background-image: url('/img/greenbar.png'); border-left: 4px solid green"`
	}
	badge := ""
	if p.Badge {
		badge = `<span id="popularity_badge_2" class="badge">62%</span>`
	}
	alert := ""
	if p.Alert != "" {
		hidden := ""
		if p.AlertHidden {
			hidden = ` style="display:none"`
		}
		rating := ""
		if p.Rating {
			rating = `<div id="question_concept_rating_div">Rate this concept</div>`
		}
		alert = fmt.Sprintf(`<div class="alert alert-%s" role="alert"%s>%s%s</div>`, p.Alert, hidden, alertText80, rating)
	}
	submit := ` style="display:none"`
	if p.SubmitVisible {
		submit = ""
	}
	return `<!DOCTYPE html><html><head><title>Quiz</title></head><body>
<div id="div_question">
  <div id="question_only"><p>` + questionText + `</p></div>
  <div class="list-group">
    <a class="list-group-item" href="#"><span>Drug W</span></a>
    <a class="list-group-item" href="#"` + optStyle + `><span>Drug Y</span>` + badge + `</a>
    <a class="list-group-item" href="#"><span>Drug Z</span></a>
  </div>
  ` + alert + `
  <button id="submit_answer"` + submit + `>Submit answer</button>
</div>
</body></html>`
}

func answered() quizPage {
	return quizPage{Alert: "success", Styled: true, Badge: true}
}

func parsePage(t *testing.T, src string) *htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func triggers(doc dom.Document) int {
	return len(doc.QueryAll("#" + TriggerID))
}

func setAttr(n dom.Node, key, val string) {
	hn := htmldoc.Unwrap(n)
	for i := range hn.Attr {
		if hn.Attr[i].Key == key {
			hn.Attr[i].Val = val
			return
		}
	}
	hn.Attr = append(hn.Attr, html.Attribute{Key: key, Val: val})
}

func hasAttr(n dom.Node, key string) bool {
	for _, a := range htmldoc.Unwrap(n).Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setText(n dom.Node, text string) {
	hn := htmldoc.Unwrap(n)
	for c := hn.FirstChild; c != nil; c = hn.FirstChild {
		hn.RemoveChild(c)
	}
	hn.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// fakeRelay records requests and answers with a fixed response.
type fakeRelay struct {
	resp anki.Response
	gate chan struct{}

	mu   sync.Mutex
	reqs []*anki.NoteRequest
}

func (f *fakeRelay) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func (f *fakeRelay) Export(ctx context.Context, req *anki.NoteRequest) anki.Response {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
		}
	}
	return f.resp
}
