package htmldoc

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rendered approximates "has computed style that paints and a client rect".
func rendered(n *html.Node) bool {
	if n.Type != html.ElementNode || neverRendered(n.DataAtom) {
		return false
	}

	style := parseStyle(n)
	if op, ok := style["opacity"]; ok {
		if f, err := strconv.ParseFloat(op, 64); err == nil && f == 0 {
			return false
		}
	}

	// visibility inherits: the nearest declaration wins.
	visibilityDecided := false
	for p := n; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if neverRendered(p.DataAtom) {
			return false
		}
		if _, ok := getAttr(p, "hidden"); ok {
			return false
		}
		s := style
		if p != n {
			s = parseStyle(p)
		}
		if s["display"] == "none" || hasClass(p, "d-none") {
			return false
		}
		if v, ok := s["visibility"]; ok && !visibilityDecided {
			visibilityDecided = true
			if v == "hidden" || v == "collapse" {
				return false
			}
		}
	}
	return true
}

func neverRendered(a atom.Atom) bool {
	switch a {
	case atom.Head, atom.Script, atom.Style, atom.Template, atom.Noscript,
		atom.Title, atom.Meta, atom.Link:
		return true
	}
	return false
}

// parseStyle reads the inline style attribute into lower-case declarations.
func parseStyle(n *html.Node) map[string]string {
	raw, ok := getAttr(n, "style")
	if !ok || raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, decl := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important"))
		out[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(v)
	}
	return out
}

var spaceRun = regexp.MustCompile(`\s+`)

// innerText approximates HTMLElement.innerText: hidden subtrees are skipped,
// whitespace inside text runs collapses, block boxes start new lines and
// paragraphs are separated by a blank line.
func innerText(n *html.Node) string {
	tb := &textBuilder{}
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			tb.text(spaceRun.ReplaceAllString(c.Data, " "))
			return
		case html.ElementNode:
		default:
			return
		}
		if c != n && !selfRendered(c) {
			return
		}
		if c.DataAtom == atom.Br {
			tb.hardBreak()
			return
		}
		breaks := blockBreaks(c.DataAtom)
		tb.newline(breaks)
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
		tb.newline(breaks)
		if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
			tb.text(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}

	lines := strings.Split(tb.b.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.Trim(l, " \t")
	}
	return strings.Join(lines, "\n")
}

// selfRendered checks the node's own hiding markers; ancestors were already
// checked on the way down.
func selfRendered(n *html.Node) bool {
	if neverRendered(n.DataAtom) {
		return false
	}
	if _, ok := getAttr(n, "hidden"); ok {
		return false
	}
	s := parseStyle(n)
	return s["display"] != "none" && !hasClass(n, "d-none")
}

func blockBreaks(a atom.Atom) int {
	switch a {
	case atom.P:
		return 2
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Details,
		atom.Dialog, atom.Dd, atom.Div, atom.Dl, atom.Dt, atom.Fieldset,
		atom.Figcaption, atom.Figure, atom.Footer, atom.Form, atom.H1, atom.H2,
		atom.H3, atom.H4, atom.H5, atom.H6, atom.Header, atom.Hr, atom.Li,
		atom.Main, atom.Nav, atom.Ol, atom.Pre, atom.Section, atom.Summary,
		atom.Table, atom.Tr, atom.Ul, atom.Caption:
		return 1
	}
	return 0
}

type textBuilder struct {
	b       strings.Builder
	pending int
	started bool
	last    byte
}

func (tb *textBuilder) text(s string) {
	if s == "" {
		return
	}
	if strings.TrimSpace(s) == "" {
		// Collapsible whitespace only survives between two inline runs.
		if tb.started && tb.pending == 0 && tb.last != ' ' && tb.last != '\n' {
			tb.write(" ")
		}
		return
	}
	if tb.pending > 0 && tb.started {
		tb.write(strings.Repeat("\n", tb.pending))
	}
	tb.pending = 0
	if tb.last == ' ' || tb.last == '\n' || !tb.started {
		s = strings.TrimLeft(s, " ")
	}
	tb.write(s)
	tb.started = true
}

func (tb *textBuilder) newline(k int) {
	if k > tb.pending {
		tb.pending = k
	}
}

// hardBreak emits a <br> line break, which unlike block breaks never
// collapses with its neighbours.
func (tb *textBuilder) hardBreak() {
	if tb.pending > 0 && tb.started {
		tb.write(strings.Repeat("\n", tb.pending))
	}
	tb.pending = 0
	tb.write("\n")
	tb.started = true
}

func (tb *textBuilder) write(s string) {
	tb.b.WriteString(s)
	tb.last = s[len(s)-1]
}
