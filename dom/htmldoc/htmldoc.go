// Package htmldoc implements dom.Document over a parsed HTML tree held in
// memory. It backs the offline extract command and every engine test.
//
// There is no layout engine: rendering is approximated from inline style
// declarations, the hidden attribute, the Bootstrap d-none utility class, and
// the set of elements browsers never render.
package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/passmed2anki/dom"
)

// Document is an in-memory page.
type Document struct {
	doc     *goquery.Document
	notices []dom.Notice
}

var _ dom.Document = (*Document)(nil)

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString parses an HTML string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Body returns the body element.
func (d *Document) Body() dom.Node {
	return d.wrap(firstNode(d.doc.Find("body")))
}

// Query returns the first element matching selector.
func (d *Document) Query(selector string) dom.Node {
	return first(d, d.doc.Find(selector))
}

// QueryAll returns all elements matching selector in document order.
func (d *Document) QueryAll(selector string) []dom.Node {
	return all(d, d.doc.Find(selector))
}

// InsertBefore creates the trigger button and places it before anchor.
func (d *Document) InsertBefore(anchor dom.Node, t dom.Trigger) (dom.Node, error) {
	btn := &html.Node{
		Type:     html.ElementNode,
		Data:     "button",
		DataAtom: atom.Button,
		Attr: []html.Attribute{
			{Key: "id", Val: t.ID},
			{Key: "type", Val: "button"},
		},
	}
	btn.AppendChild(&html.Node{Type: html.TextNode, Data: t.Label})

	if anchor != nil {
		a, err := d.unwrap(anchor)
		if err != nil {
			return nil, err
		}
		if p := a.Parent; p != nil && p.Type == html.ElementNode {
			p.InsertBefore(btn, a)
			return d.wrap(btn), nil
		}
	}

	body := firstNode(d.doc.Find("body"))
	if body == nil {
		return nil, fmt.Errorf("htmldoc: insert trigger: no body")
	}
	body.AppendChild(btn)
	return d.wrap(btn), nil
}

// Remove detaches n from its parent.
func (d *Document) Remove(n dom.Node) error {
	hn, err := d.unwrap(n)
	if err != nil {
		return err
	}
	if hn.Parent != nil {
		hn.Parent.RemoveChild(hn)
	}
	return nil
}

// SetDisabled sets or clears the disabled attribute.
func (d *Document) SetDisabled(n dom.Node, disabled bool) error {
	hn, err := d.unwrap(n)
	if err != nil {
		return err
	}
	if disabled {
		setAttr(hn, "disabled", "")
	} else {
		removeAttr(hn, "disabled")
	}
	return nil
}

// Notify records the notice and mirrors it into a #pm-anki-toast element,
// creating it on first use.
func (d *Document) Notify(n dom.Notice) error {
	d.notices = append(d.notices, n)

	toast := firstNode(d.doc.Find("#pm-anki-toast"))
	if toast == nil {
		body := firstNode(d.doc.Find("body"))
		if body == nil {
			return fmt.Errorf("htmldoc: notify: no body")
		}
		toast = &html.Node{
			Type:     html.ElementNode,
			Data:     "div",
			DataAtom: atom.Div,
			Attr:     []html.Attribute{{Key: "id", Val: "pm-anki-toast"}},
		}
		body.AppendChild(toast)
	}
	for c := toast.FirstChild; c != nil; c = toast.FirstChild {
		toast.RemoveChild(c)
	}
	toast.AppendChild(&html.Node{Type: html.TextNode, Data: n.Message})
	setAttr(toast, "data-state", n.State())
	setAttr(toast, "class", "visible")
	return nil
}

// Notices returns every notice shown so far, oldest first.
func (d *Document) Notices() []dom.Notice {
	return append([]dom.Notice(nil), d.notices...)
}

// Render serialises the whole document.
func (d *Document) Render() string {
	var buf bytes.Buffer
	for _, n := range d.doc.Nodes {
		html.Render(&buf, n)
	}
	return buf.String()
}

// Unwrap exposes the underlying html node of a handle from this document.
func Unwrap(n dom.Node) *html.Node {
	if hn, ok := n.(*Node); ok && hn != nil {
		return hn.n
	}
	return nil
}

func (d *Document) wrap(n *html.Node) dom.Node {
	if n == nil {
		return nil
	}
	return &Node{n: n, d: d}
}

func (d *Document) unwrap(n dom.Node) (*html.Node, error) {
	hn, ok := n.(*Node)
	if !ok || hn == nil || hn.d != d {
		return nil, fmt.Errorf("htmldoc: node %T does not belong to this document", n)
	}
	return hn.n, nil
}

func (d *Document) root() *html.Node {
	if len(d.doc.Nodes) == 0 {
		return nil
	}
	return d.doc.Nodes[0]
}

// firstNode is sel.Get(0) without the panic on an empty selection.
func firstNode(sel *goquery.Selection) *html.Node {
	if sel.Length() == 0 {
		return nil
	}
	return sel.Nodes[0]
}

func first(d *Document, sel *goquery.Selection) dom.Node {
	return d.wrap(firstNode(sel))
}

func all(d *Document, sel *goquery.Selection) []dom.Node {
	out := make([]dom.Node, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}
