// Package preview renders what one evaluation pass sees on a page: the
// located regions as Markdown, the submission signals, and the note that
// would be exported.
package preview

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/hazyhaar/passmed2anki/anki"
	"github.com/hazyhaar/passmed2anki/dom"
	"github.com/hazyhaar/passmed2anki/engine"
	"github.com/hazyhaar/passmed2anki/settings"
)

// Preview is the result of Collect.
type Preview struct {
	Outcome  engine.Outcome
	Question engine.Located
	Options  engine.Located
	Answer   engine.Located

	// QuestionHTML and AnswerHTML are the cleaned inner HTML of the
	// located regions.
	QuestionHTML string
	AnswerHTML   string

	Request *anki.NoteRequest
	// BuildErr is set when no request could be built.
	BuildErr error
}

// Collect runs one evaluation pass over doc and gathers the preview.
func Collect(ctx context.Context, doc dom.Document, ctrl *engine.Controller, b engine.PayloadBuilder, s settings.Settings) Preview {
	p := Preview{
		Outcome:  ctrl.Evaluate(ctx),
		Question: ctrl.Locate(engine.Question),
		Options:  ctrl.Locate(engine.OptionList),
		Answer:   ctrl.Locate(engine.Answer),
	}
	p.QuestionHTML = engine.CleanHTML(p.Question.Node, engine.AuxiliaryWidgets...)
	p.AnswerHTML = engine.CleanHTML(p.Answer.Node, engine.AuxiliaryWidgets...)
	p.Request, p.BuildErr = b.Build(doc, s)
	return p
}

// Renderer converts previews to Markdown.
type Renderer struct {
	conv   *converter.Converter
	domain string
}

// NewRenderer creates a Renderer. domain resolves relative links and
// images; it may be empty.
func NewRenderer(domain string) *Renderer {
	return &Renderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		domain: domain,
	}
}

// HTML converts one fragment.
func (r *Renderer) HTML(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}
	var opts []converter.ConvertOptionFunc
	if r.domain != "" {
		opts = append(opts, converter.WithDomain(r.domain))
	}
	md, err := r.conv.ConvertString(fragment, opts...)
	if err != nil {
		return "", fmt.Errorf("preview: markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Markdown renders the whole preview.
func (r *Renderer) Markdown(p Preview) (string, error) {
	var b strings.Builder

	q, err := r.HTML(p.QuestionHTML)
	if err != nil {
		return "", err
	}
	a, err := r.HTML(p.AnswerHTML)
	if err != nil {
		return "", err
	}

	section(&b, "Question", q, p.Question.Heuristic)
	if p.Options.Text != "" {
		var items []string
		for _, line := range strings.Split(p.Options.Text, "\n") {
			items = append(items, "- "+line)
		}
		section(&b, "Options", strings.Join(items, "\n"), false)
	} else {
		section(&b, "Options", "", false)
	}
	section(&b, "Answer", a, p.Answer.Heuristic)

	st := p.Outcome.State
	fmt.Fprintf(&b, "## State\n\n")
	fmt.Fprintf(&b, "- chosen: %v\n", st.IsChosen)
	fmt.Fprintf(&b, "- result alert: %v\n", st.AnswerNode != nil)
	fmt.Fprintf(&b, "- result-styled option: %v\n", st.ResultStyledOption)
	fmt.Fprintf(&b, "- popularity badge: %v\n", st.PopularityBadge)
	fmt.Fprintf(&b, "- submit visible: %v\n", st.SubmitVisible)
	fmt.Fprintf(&b, "- trigger: %v\n", p.Outcome.Inserted)
	if p.BuildErr != nil {
		fmt.Fprintf(&b, "- export: %v\n", p.BuildErr)
	}
	return b.String(), nil
}

func section(b *strings.Builder, title, body string, heuristic bool) {
	fmt.Fprintf(b, "## %s", title)
	if heuristic {
		b.WriteString(" (heuristic)")
	}
	b.WriteString("\n\n")
	if body == "" {
		body = "_not found_"
	}
	b.WriteString(body)
	b.WriteString("\n\n")
}
