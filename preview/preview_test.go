package preview

import (
	"context"
	"strings"
	"testing"

	"github.com/hazyhaar/passmed2anki/dom/htmldoc"
	"github.com/hazyhaar/passmed2anki/engine"
	"github.com/hazyhaar/passmed2anki/settings"
)

const answeredPage = `<!DOCTYPE html><html><body>
<div id="div_question">
  <div id="question_only"><p>A 64-year-old man has <strong>new-onset</strong> AF. What is the first-line treatment?</p></div>
  <div class="list-group">
    <a class="list-group-item" href="#"><span>Digoxin</span></a>
    <a class="list-group-item" href="#" style="background: url(greenbar.png)"><span>Bisoprolol</span></a>
  </div>
  <div class="alert alert-success" role="alert">
    <p>Rate control with a <em>beta-blocker</em> is first line.</p>
    <div id="question_concept_rating_div">Rate this</div>
  </div>
</div>
</body></html>`

func TestCollectAndMarkdown(t *testing.T) {
	doc, err := htmldoc.ParseString(answeredPage)
	if err != nil {
		t.Fatal(err)
	}
	ctrl := engine.NewController(doc, engine.ControllerConfig{})
	p := Collect(context.Background(), doc, ctrl, engine.PayloadBuilder{}, settings.Defaults())

	if !p.Outcome.Inserted || p.BuildErr != nil || p.Request == nil {
		t.Fatalf("preview: %+v", p)
	}
	if back := p.Request.Params.Note.Fields.Back; !strings.HasPrefix(back, "Bisoprolol<br><br><p>Rate control") {
		t.Errorf("back: %q", back)
	}

	md, err := NewRenderer("https://www.passmedicine.com").Markdown(p)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"## Question\n\nA 64-year-old man has **new-onset** AF.",
		"- Digoxin\n- Bisoprolol",
		"Rate control with a *beta-blocker* is first line.",
		"- chosen: true",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Rate this") {
		t.Errorf("rating widget leaked into markdown:\n%s", md)
	}
}

func TestMarkdown_NotAnswered(t *testing.T) {
	doc, _ := htmldoc.ParseString(`<html><body><div id="question_only">Which nerve supplies the deltoid muscle?</div></body></html>`)
	ctrl := engine.NewController(doc, engine.ControllerConfig{})
	p := Collect(context.Background(), doc, ctrl, engine.PayloadBuilder{}, settings.Defaults())

	md, err := NewRenderer("").Markdown(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "- chosen: false") || !strings.Contains(md, "- export: ") {
		t.Errorf("markdown:\n%s", md)
	}
}
