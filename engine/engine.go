// Package engine detects when a quiz question has been answered, keeps the
// export trigger in sync with the page, and builds the export request.
//
// All document access happens on the goroutine running Engine.Run.
// Producers (the live page binding, the control API) post Events; the
// engine debounces mutations, evaluates, and runs the relay call off-loop.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hazyhaar/passmed2anki/anki"
	"github.com/hazyhaar/passmed2anki/dom"
	"github.com/hazyhaar/passmed2anki/internal/clock"
	"github.com/hazyhaar/passmed2anki/internal/debounce"
	"github.com/hazyhaar/passmed2anki/internal/idgen"
	"github.com/hazyhaar/passmed2anki/settings"
)

// EventKind classifies inbound events.
type EventKind int

const (
	// EventMutation is a document change notification.
	EventMutation EventKind = iota
	// EventNavigate is a hash change or history navigation.
	EventNavigate
	// EventDebug toggles verbose logging.
	EventDebug
	// EventActivate is a click on the trigger.
	EventActivate
)

func (k EventKind) String() string {
	switch k {
	case EventMutation:
		return "mutation"
	case EventNavigate:
		return "navigate"
	case EventDebug:
		return "debug"
	case EventActivate:
		return "activate"
	default:
		return "unknown"
	}
}

// Event is posted to the engine loop.
type Event struct {
	Kind  EventKind
	Debug bool
}

// Config configures an Engine.
type Config struct {
	// Window is the debounce quiet period. Default: 250ms.
	Window time.Duration
	// Clock drives the debounce timer. Default: wall clock.
	Clock clock.Clock
	// Controller configures catalog, heuristics and payload building.
	Controller ControllerConfig
	// Settings are the initial export preferences.
	Settings settings.Settings
	// Logger should be built on a handler whose level is Level.
	Logger *slog.Logger
	// Level is raised to Debug by debug events and restored to its value
	// at New when debug is switched off.
	Level *slog.LevelVar
	// Debug starts the engine in verbose mode.
	Debug bool
	// Session identifies this page session in logs and status.
	Session string
	// OnPass, when set, is called on the loop after every evaluation.
	OnPass func(Outcome)
}

// Status is a snapshot published after every loop step.
type Status struct {
	Session      string         `json:"session"`
	SessionStart time.Time      `json:"session_start,omitzero"`
	Debug        bool           `json:"debug"`
	Events       int64          `json:"events"`
	Passes       int64          `json:"passes"`
	Coalesced    int64          `json:"coalesced"`
	PassPending  bool           `json:"pass_pending"`
	Ready        bool           `json:"ready"`
	TriggerShown bool           `json:"trigger_shown"`
	Exporting    bool           `json:"exporting"`
	Signature    string         `json:"signature,omitempty"`
	LastPass     time.Time      `json:"last_pass,omitzero"`
	LastExport   *anki.Response `json:"last_export,omitempty"`
}

const eventBuffer = 64

// Engine runs the evaluation loop for one page session.
type Engine struct {
	cfg    Config
	ctrl   *Controller
	relay  Exporter
	sched  *debounce.Scheduler
	logger *slog.Logger

	events chan Event
	done   chan anki.Response

	settings atomic.Pointer[settings.Settings]
	status   atomic.Pointer[Status]

	// loop-owned
	debug     bool
	baseLevel slog.Level
	started   time.Time
	received  int64
	passes    int64
	coalesced int64
	last      Outcome
	lastPass  time.Time
	lastSent  *anki.Response
}

// New creates an Engine over doc exporting through relay.
func New(doc dom.Document, relay Exporter, cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Level == nil {
		cfg.Level = new(slog.LevelVar)
	}
	if cfg.Window <= 0 {
		cfg.Window = debounce.DefaultWindow
	}
	logger := cfg.Logger
	if cfg.Session != "" {
		logger = logger.With("session", cfg.Session)
	}
	cfg.Controller.Logger = logger

	e := &Engine{
		cfg:    cfg,
		ctrl:   NewController(doc, cfg.Controller),
		relay:  relay,
		sched:  debounce.New(debounce.Config{Window: cfg.Window, Clock: cfg.Clock}),
		logger: logger,
		events: make(chan Event, eventBuffer),
		done:   make(chan anki.Response, 1),
	}
	s := cfg.Settings.Normalize()
	e.settings.Store(&s)
	e.baseLevel = cfg.Level.Level()
	if ts, ok := idgen.SessionTime(cfg.Session); ok {
		e.started = ts
	}
	if cfg.Debug {
		e.setDebug(true)
	}
	e.publish()
	return e
}

// Controller exposes the trigger controller. Only use it from OnPass or
// before Run starts.
func (e *Engine) Controller() *Controller { return e.ctrl }

// Post queues an event. It blocks while the buffer is full.
func (e *Engine) Post(ctx context.Context, ev Event) error {
	select {
	case e.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetSettings replaces the export preferences used by later exports.
func (e *Engine) SetSettings(s settings.Settings) {
	s = s.Normalize()
	e.settings.Store(&s)
}

// Settings returns the current export preferences.
func (e *Engine) Settings() settings.Settings { return *e.settings.Load() }

// Status returns the latest snapshot. Safe from any goroutine.
func (e *Engine) Status() Status { return *e.status.Load() }

// Run evaluates once, then serves events until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.InfoContext(ctx, "engine: started", "window", e.cfg.Window)
	e.evaluate(ctx, 0)

	for {
		select {
		case <-ctx.Done():
			e.sched.Cancel()
			e.logger.InfoContext(ctx, "engine: stopped", "passes", e.passes)
			return ctx.Err()

		case ev := <-e.events:
			e.handle(ctx, ev)

		case <-e.sched.C():
			e.evaluate(ctx, e.sched.Fired())

		case resp := <-e.done:
			e.ctrl.FinishExport(ctx, resp)
			e.lastSent = &resp
			e.publish()
		}
	}
}

func (e *Engine) handle(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventMutation, EventNavigate:
		e.sched.Notify()
		e.received++
		e.publish()

	case EventDebug:
		e.setDebug(ev.Debug)
		e.logger.InfoContext(ctx, "engine: debug mode", "enabled", ev.Debug)
		e.sched.Notify()
		e.publish()

	case EventActivate:
		e.activate(ctx)
	}
}

func (e *Engine) activate(ctx context.Context) {
	req, err := e.ctrl.BeginExport(ctx, e.Settings())
	if err != nil {
		e.logger.DebugContext(ctx, "engine: activation ignored", "error", err)
		e.publish()
		return
	}
	e.publish()

	go func() {
		resp := e.relay.Export(ctx, req)
		select {
		case e.done <- resp:
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) evaluate(ctx context.Context, coalesced int) {
	out := e.ctrl.Evaluate(ctx)
	e.passes++
	e.coalesced += int64(coalesced)
	e.last = out
	e.lastPass = e.now()
	if e.cfg.OnPass != nil {
		e.cfg.OnPass(out)
	}
	e.publish()
}

func (e *Engine) setDebug(on bool) {
	e.debug = on
	if on {
		e.cfg.Level.Set(slog.LevelDebug)
	} else {
		e.cfg.Level.Set(e.baseLevel)
	}
}

func (e *Engine) publish() {
	e.status.Store(&Status{
		Session:      e.cfg.Session,
		SessionStart: e.started,
		Debug:        e.debug,
		Events:       e.received,
		Passes:       e.passes,
		Coalesced:    e.coalesced,
		PassPending:  e.sched.Pending(),
		Ready:        e.last.Ready,
		TriggerShown: e.ctrl.Trigger() != nil,
		Exporting:    e.ctrl.Exporting(),
		Signature:    string(e.last.Signature),
		LastPass:     e.lastPass,
		LastExport:   e.lastSent,
	})
}

func (e *Engine) now() time.Time {
	if e.cfg.Clock != nil {
		return e.cfg.Clock.Now()
	}
	return time.Now()
}
