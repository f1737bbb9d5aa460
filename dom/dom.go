// Package dom defines the document capability the detection engine reads
// and mutates. Two backends implement it: dom/live drives a real Chrome tab
// over CDP, dom/htmldoc holds a parsed HTML tree in memory.
//
// Node handles are borrowed from the backing document. They are only
// meaningful for the evaluation pass that produced them, except for the
// trigger node which the engine owns until it removes it.
package dom

// Node is an element of the document.
//
// Backends must return an untyped nil Node (never a typed nil pointer) when
// a lookup yields nothing, so callers can compare against nil.
type Node interface {
	// Tag is the lower-case element name.
	Tag() string
	// Attr returns the attribute value, or "" when absent.
	Attr(name string) string
	// HasClass reports whether the class list contains name.
	HasClass(name string) bool
	// Parent returns the parent element, or nil at the top of the tree.
	Parent() Node
	// Depth counts parent elements up to the root, capped at MaxDepth.
	Depth() int

	// Query returns the first descendant matching selector, or nil.
	Query(selector string) Node
	// QueryAll returns every descendant matching selector in document order.
	QueryAll(selector string) []Node

	// Visible reports whether the node is actually rendered.
	Visible() bool
	// Attached reports whether the node is still part of the document.
	Attached() bool

	// InnerText is the rendered text, before normalisation.
	InnerText() string
	// InnerHTML serialises a deep copy of the node's children after
	// removing every descendant matching one of strip.
	InnerHTML(strip ...string) string
}

// Document is the page-level capability.
type Document interface {
	// Body returns the document body, or nil while the page is loading.
	Body() Node
	// Query returns the first element matching selector, or nil.
	Query(selector string) Node
	// QueryAll returns every element matching selector in document order.
	QueryAll(selector string) []Node

	// InsertBefore creates the trigger element and inserts it immediately
	// before anchor. A nil anchor, or one without a parent, appends the
	// trigger to the body.
	InsertBefore(anchor Node, t Trigger) (Node, error)
	// Remove detaches n from the document.
	Remove(n Node) error
	// SetDisabled toggles the disabled state of a control.
	SetDisabled(n Node, disabled bool) error
	// Notify shows a transient notice to the user.
	Notify(n Notice) error
}

// MaxDepth bounds Depth walks.
const MaxDepth = 80

// Trigger describes the export control inserted into the page.
type Trigger struct {
	ID    string
	Label string
}

// Notice is a transient user-visible message.
type Notice struct {
	Message string
	Error   bool
}

// State returns the data-state value the notice element carries.
func (n Notice) State() string {
	if n.Error {
		return "error"
	}
	return "success"
}
