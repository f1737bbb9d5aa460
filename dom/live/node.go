package live

import (
	"github.com/go-rod/rod"

	"github.com/hazyhaar/passmed2anki/dom"
)

// Node is an element handle in the page. A failed DevTools call reads as
// the zero value: absent, hidden, detached, empty.
type Node struct {
	el *rod.Element
}

var _ dom.Node = (*Node)(nil)

func wrap(el *rod.Element) dom.Node {
	if el == nil {
		return nil
	}
	return &Node{el: el}
}

func wrapAll(els rod.Elements) []dom.Node {
	out := make([]dom.Node, 0, len(els))
	for _, el := range els {
		out = append(out, &Node{el: el})
	}
	return out
}

// Element exposes the rod handle.
func (n *Node) Element() *rod.Element { return n.el }

func (n *Node) str(js string, args ...any) string {
	res, err := n.el.Eval(js, args...)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (n *Node) boolean(js string, args ...any) bool {
	res, err := n.el.Eval(js, args...)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

func (n *Node) Tag() string {
	return n.str(`() => this.tagName.toLowerCase()`)
}

func (n *Node) Attr(name string) string {
	v, err := n.el.Attribute(name)
	if err != nil || v == nil {
		return ""
	}
	return *v
}

func (n *Node) HasClass(name string) bool {
	return n.boolean(`(c) => this.classList.contains(c)`, name)
}

func (n *Node) Parent() dom.Node {
	p, err := n.el.Parent()
	if err != nil {
		return nil
	}
	return wrap(p)
}

func (n *Node) Depth() int {
	res, err := n.el.Eval(`(max) => {
		let depth = 0;
		for (let cur = this; cur && cur.parentElement; cur = cur.parentElement) {
			depth++;
			if (depth > max) break;
		}
		return depth;
	}`, dom.MaxDepth)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

func (n *Node) Query(selector string) dom.Node {
	els, err := n.el.Elements(selector)
	if err != nil || len(els) == 0 {
		return nil
	}
	return wrap(els[0])
}

func (n *Node) QueryAll(selector string) []dom.Node {
	els, err := n.el.Elements(selector)
	if err != nil {
		return nil
	}
	return wrapAll(els)
}

func (n *Node) Visible() bool {
	return n.boolean(`() => {
		if (!this.isConnected) return false;
		const style = window.getComputedStyle(this);
		if (style.display === "none" || style.visibility === "hidden" || style.opacity === "0") return false;
		if (this.closest("[hidden]")) return false;
		return this.getClientRects().length > 0;
	}`)
}

func (n *Node) Attached() bool {
	return n.boolean(`() => this.isConnected`)
}

func (n *Node) InnerText() string {
	return n.str(`() => this.innerText || ""`)
}

func (n *Node) InnerHTML(strip ...string) string {
	if strip == nil {
		strip = []string{}
	}
	return n.str(`(strip) => {
		const copy = this.cloneNode(true);
		for (const sel of strip) {
			if (!sel) continue;
			try {
				copy.querySelectorAll(sel).forEach((el) => el.remove());
			} catch (e) {}
		}
		return copy.innerHTML;
	}`, strip)
}
