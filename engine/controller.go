package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hazyhaar/passmed2anki/anki"
	"github.com/hazyhaar/passmed2anki/dom"
	"github.com/hazyhaar/passmed2anki/settings"
)

// Trigger identity in the page.
const (
	TriggerID    = "pm-anki-button"
	TriggerLabel = "Add to Anki"
)

// User-facing notices.
const (
	NoticeSending    = "Sending to Anki…"
	NoticeSaved      = "Saved to Anki"
	NoticeMissing    = "Missing question or answer text"
	NoticeRelayFault = "AnkiConnect request failed"
)

var (
	// ErrNoTrigger is returned when an export is requested while no trigger
	// is shown.
	ErrNoTrigger = errors.New("engine: no trigger")
	// ErrExportInFlight is returned when an export is requested before the
	// previous one finished.
	ErrExportInFlight = errors.New("engine: export in flight")
)

// Exporter hands a note request to the relay.
type Exporter interface {
	Export(ctx context.Context, req *anki.NoteRequest) anki.Response
}

// Outcome describes one evaluation pass.
type Outcome struct {
	Question  string
	Answer    string
	Heuristic bool
	State     SubmissionState
	Signature Signature
	// Changed is set when the signature differs from the previous pass.
	Changed bool
	// Ready is the creation condition: chosen and both texts present.
	Ready bool
	// Inserted and Removed report trigger changes made by this pass.
	Inserted bool
	Removed  bool
}

// Controller owns the trigger and the per-page state. It is not safe for
// concurrent use; one event loop drives it.
type Controller struct {
	doc        dom.Document
	catalog    Catalog
	heuristics Heuristics
	builder    PayloadBuilder
	logger     *slog.Logger

	tracker   SignatureTracker
	trigger   dom.Node
	exporting dom.Node
}

// ControllerConfig configures a Controller. Zero fields take the defaults.
type ControllerConfig struct {
	Catalog    Catalog
	Heuristics Heuristics
	Builder    PayloadBuilder
	Logger     *slog.Logger
}

// NewController creates a Controller bound to doc.
func NewController(doc dom.Document, cfg ControllerConfig) *Controller {
	if cfg.Catalog == nil {
		cfg.Catalog = DefaultCatalog()
	}
	cfg.Heuristics.defaults()
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		doc:        doc,
		catalog:    cfg.Catalog,
		heuristics: cfg.Heuristics,
		builder:    cfg.Builder,
		logger:     cfg.Logger,
	}
}

// Trigger returns the trigger node, or nil when none is shown.
func (c *Controller) Trigger() dom.Node { return c.trigger }

// Exporting reports whether an export is in flight.
func (c *Controller) Exporting() bool { return c.exporting != nil }

// Evaluate runs one pass: locate, detect, fingerprint, then create or
// remove the trigger.
func (c *Controller) Evaluate(ctx context.Context) Outcome {
	q := c.Locate(Question)
	st := DetectSubmission(c.doc)

	out := Outcome{
		Question:  q.Text,
		Answer:    Text(st.AnswerNode),
		Heuristic: q.Heuristic,
		State:     st,
	}
	out.Signature = NewSignature(out.Question, out.Answer)

	if c.tracker.Observe(out.Signature) {
		out.Changed = true
		out.Removed = c.removeTrigger(ctx)
	}

	out.Ready = st.IsChosen && out.Question != "" && out.Answer != ""
	if !out.Ready {
		if c.removeTrigger(ctx) {
			out.Removed = true
		}
		c.logger.DebugContext(ctx, "engine: answer not chosen yet",
			"is_chosen", st.IsChosen,
			"has_alert", st.AnswerNode != nil,
			"styled_option", st.ResultStyledOption,
			"badge", st.PopularityBadge,
			"submit_visible", st.SubmitVisible,
			"has_question", out.Question != "",
		)
		return out
	}

	if c.trigger != nil {
		if c.trigger.Attached() {
			return out
		}
		c.logger.DebugContext(ctx, "engine: trigger detached by page")
		c.trigger = nil
	}

	anchor := st.AnswerNode
	if anchor == nil {
		anchor = q.Node
	}
	n, err := c.doc.InsertBefore(anchor, dom.Trigger{ID: TriggerID, Label: TriggerLabel})
	if err != nil {
		c.logger.WarnContext(ctx, "engine: insert trigger", "error", err)
		return out
	}
	c.trigger = n
	out.Inserted = true
	c.logger.DebugContext(ctx, "engine: trigger inserted", "signature", string(out.Signature))
	return out
}

func (c *Controller) removeTrigger(ctx context.Context) bool {
	if c.trigger == nil {
		return false
	}
	if err := c.doc.Remove(c.trigger); err != nil {
		c.logger.DebugContext(ctx, "engine: remove trigger", "error", err)
	}
	c.trigger = nil
	return true
}

// BeginExport disables the trigger, announces the export and builds the
// request. On a build failure the export is finished immediately with an
// error notice and the error is returned.
func (c *Controller) BeginExport(ctx context.Context, s settings.Settings) (*anki.NoteRequest, error) {
	if c.exporting != nil {
		return nil, ErrExportInFlight
	}
	if c.trigger == nil {
		return nil, ErrNoTrigger
	}

	c.exporting = c.trigger
	if err := c.doc.SetDisabled(c.exporting, true); err != nil {
		c.logger.DebugContext(ctx, "engine: disable trigger", "error", err)
	}
	c.notify(ctx, dom.Notice{Message: NoticeSending})

	req, err := c.builder.Build(c.doc, s)
	if err != nil {
		c.logger.DebugContext(ctx, "engine: missing fields for payload", "error", err)
		c.FinishExport(ctx, anki.Response{Error: NoticeMissing})
		return nil, err
	}
	return req, nil
}

// FinishExport reports the relay response and re-enables the trigger.
func (c *Controller) FinishExport(ctx context.Context, resp anki.Response) {
	if resp.OK {
		c.notify(ctx, dom.Notice{Message: NoticeSaved})
	} else {
		msg := resp.Error
		if msg == "" {
			msg = NoticeRelayFault
		}
		c.logger.WarnContext(ctx, "engine: export failed", "error", msg)
		c.notify(ctx, dom.Notice{Message: msg, Error: true})
	}

	if c.exporting != nil {
		if err := c.doc.SetDisabled(c.exporting, false); err != nil {
			c.logger.DebugContext(ctx, "engine: enable trigger", "error", err)
		}
		c.exporting = nil
	}
}

// Export runs a whole export synchronously through relay.
func (c *Controller) Export(ctx context.Context, relay Exporter, s settings.Settings) anki.Response {
	req, err := c.BeginExport(ctx, s)
	if err != nil {
		if errors.Is(err, ErrMissingField) {
			return anki.Response{Error: NoticeMissing}
		}
		return anki.Response{Error: err.Error()}
	}
	resp := relay.Export(ctx, req)
	c.FinishExport(ctx, resp)
	return resp
}

func (c *Controller) notify(ctx context.Context, n dom.Notice) {
	if err := c.doc.Notify(n); err != nil {
		c.logger.DebugContext(ctx, "engine: notify", "error", err)
	}
}
