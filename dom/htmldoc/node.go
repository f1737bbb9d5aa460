package htmldoc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/hazyhaar/passmed2anki/dom"
)

// Node is an element handle into a Document.
type Node struct {
	n *html.Node
	d *Document
}

var _ dom.Node = (*Node)(nil)

func (n *Node) Tag() string { return n.n.Data }

func (n *Node) Attr(name string) string {
	v, _ := getAttr(n.n, name)
	return v
}

func (n *Node) HasClass(name string) bool {
	return hasClass(n.n, name)
}

func (n *Node) Parent() dom.Node {
	p := n.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return n.d.wrap(p)
}

// Depth counts ancestor elements, matching parentElement semantics: the
// document node itself is not counted.
func (n *Node) Depth() int {
	depth := 0
	for p := n.n.Parent; p != nil && p.Type == html.ElementNode; p = p.Parent {
		depth++
		if depth > dom.MaxDepth {
			break
		}
	}
	return depth
}

func (n *Node) Query(selector string) dom.Node {
	return first(n.d, n.selection().Find(selector))
}

func (n *Node) QueryAll(selector string) []dom.Node {
	return all(n.d, n.selection().Find(selector))
}

func (n *Node) Visible() bool {
	if !n.Attached() {
		return false
	}
	return rendered(n.n)
}

func (n *Node) Attached() bool {
	root := n.d.root()
	for p := n.n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

func (n *Node) InnerText() string {
	return innerText(n.n)
}

// InnerHTML clones the node, strips matching descendants from the copy and
// serialises the copy's children. The live tree is left untouched.
func (n *Node) InnerHTML(strip ...string) string {
	clone := n.selection().Clone()
	for _, sel := range strip {
		if sel == "" {
			continue
		}
		clone.Find(sel).Remove()
	}
	out, err := clone.Html()
	if err != nil {
		return ""
	}
	return out
}

func (n *Node) selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(n.n).Selection
}

func hasClass(n *html.Node, name string) bool {
	v, _ := getAttr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == name {
			return true
		}
	}
	return false
}
