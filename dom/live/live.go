// Package live implements dom.Document over a Chrome tab driven by go-rod.
//
// Every call is a DevTools round trip. The engine calls the document only
// from its loop goroutine, so the Document does no locking of its own.
package live

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/passmed2anki/dom"
)

//go:embed bridge.js
var bridgeJS string

// BindingName is the runtime binding the injected script reports through.
const BindingName = "__passmed2anki_binding"

// ToastID is the id of the notice element.
const ToastID = "pm-anki-toast"

// Document is a live page.
type Document struct {
	page   *rod.Page
	logger *slog.Logger
}

var _ dom.Document = (*Document)(nil)

// New wraps page. The page's context bounds every call.
func New(page *rod.Page, logger *slog.Logger) *Document {
	if logger == nil {
		logger = slog.Default()
	}
	return &Document{page: page, logger: logger}
}

// Context rebinds the document to ctx.
func (d *Document) Context(ctx context.Context) *Document {
	return &Document{page: d.page.Context(ctx), logger: d.logger}
}

func (d *Document) Body() dom.Node {
	return d.Query("body")
}

func (d *Document) Query(selector string) dom.Node {
	els, err := d.page.Elements(selector)
	if err != nil || len(els) == 0 {
		return nil
	}
	return wrap(els[0])
}

func (d *Document) QueryAll(selector string) []dom.Node {
	els, err := d.page.Elements(selector)
	if err != nil {
		d.logger.Debug("live: query", "selector", selector, "error", err)
		return nil
	}
	return wrapAll(els)
}

const insertJS = `(anchor, id, label) => {
	const btn = document.createElement("button");
	btn.id = id;
	btn.type = "button";
	btn.textContent = label;
	if (anchor && anchor.parentElement) {
		anchor.parentElement.insertBefore(btn, anchor);
	} else {
		document.body.appendChild(btn);
	}
	return btn;
}`

// InsertBefore creates the trigger in the page. Clicks reach the engine
// through the bridge's delegated listener.
func (d *Document) InsertBefore(anchor dom.Node, t dom.Trigger) (dom.Node, error) {
	var anchorArg any
	if anchor != nil {
		el, err := unwrap(anchor)
		if err != nil {
			return nil, err
		}
		anchorArg = el.Object
	}

	obj, err := d.page.Evaluate(rod.Eval(insertJS, anchorArg, t.ID, t.Label).ByObject())
	if err != nil {
		return nil, fmt.Errorf("live: insert trigger: %w", err)
	}
	el, err := d.page.ElementFromObject(obj)
	if err != nil {
		return nil, fmt.Errorf("live: insert trigger: %w", err)
	}
	return wrap(el), nil
}

func (d *Document) Remove(n dom.Node) error {
	el, err := unwrap(n)
	if err != nil {
		return err
	}
	if err := el.Remove(); err != nil {
		return fmt.Errorf("live: remove: %w", err)
	}
	return nil
}

func (d *Document) SetDisabled(n dom.Node, disabled bool) error {
	el, err := unwrap(n)
	if err != nil {
		return err
	}
	if _, err := el.Eval(`(v) => { this.disabled = v }`, disabled); err != nil {
		return fmt.Errorf("live: set disabled: %w", err)
	}
	return nil
}

const toastJS = `(id, message, state) => {
	let toast = document.getElementById(id);
	if (!toast) {
		toast = document.createElement("div");
		toast.id = id;
		document.body.appendChild(toast);
	}
	toast.textContent = message;
	toast.dataset.state = state;
	toast.classList.add("visible");
	clearTimeout(toast._timer);
	toast._timer = setTimeout(() => toast.classList.remove("visible"), 3000);
}`

// Notify shows the toast; it hides itself after 3s.
func (d *Document) Notify(n dom.Notice) error {
	if _, err := d.page.Eval(toastJS, ToastID, n.Message, n.State()); err != nil {
		return fmt.Errorf("live: notify: %w", err)
	}
	return nil
}

// Install adds the runtime binding and injects the bridge into the current
// document and every future one.
func (d *Document) Install() error {
	if err := (proto.RuntimeAddBinding{Name: BindingName}).Call(d.page); err != nil {
		d.logger.Warn("live: addBinding failed (may already exist)", "error", err)
	}
	if _, err := d.page.EvalOnNewDocument(bridgeJS); err != nil {
		return fmt.Errorf("live: inject bridge on new documents: %w", err)
	}
	if _, err := d.page.Eval("() => {" + bridgeJS + "}"); err != nil {
		return fmt.Errorf("live: inject bridge: %w", err)
	}
	return nil
}

var errForeignNode = errors.New("live: node does not belong to a live document")

func unwrap(n dom.Node) (*rod.Element, error) {
	ln, ok := n.(*Node)
	if !ok || ln == nil {
		return nil, errForeignNode
	}
	return ln.el, nil
}
