package engine

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/hazyhaar/passmed2anki/anki"
	"github.com/hazyhaar/passmed2anki/internal/clock"
	"github.com/hazyhaar/passmed2anki/internal/debounce"
	"github.com/hazyhaar/passmed2anki/internal/idgen"
	"github.com/hazyhaar/passmed2anki/settings"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

type loopHarness struct {
	eng    *Engine
	clock  *clock.Fake
	passes chan Outcome
	cancel context.CancelFunc
	errc   chan error
}

func startEngine(t *testing.T, page string, relay Exporter, cfg Config) *loopHarness {
	t.Helper()
	doc := parsePage(t, page)
	h := &loopHarness{
		clock:  clock.NewFake(time.Unix(1700000000, 0)),
		passes: make(chan Outcome, 16),
		errc:   make(chan error, 1),
	}
	cfg.Clock = h.clock
	cfg.OnPass = func(o Outcome) { h.passes <- o }
	h.eng = New(doc, relay, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.errc <- h.eng.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.errc
	})

	h.nextPass(t)
	return h
}

func (h *loopHarness) nextPass(t *testing.T) Outcome {
	t.Helper()
	select {
	case o := <-h.passes:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("no evaluation pass")
		return Outcome{}
	}
}

func (h *loopHarness) noPass(t *testing.T) {
	t.Helper()
	select {
	case o := <-h.passes:
		t.Fatalf("unexpected pass: %+v", o)
	case <-time.After(50 * time.Millisecond):
	}
}

func (h *loopHarness) post(t *testing.T, ev Event) {
	t.Helper()
	if err := h.eng.Post(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
}

func TestEngine_BurstYieldsOnePass(t *testing.T) {
	h := startEngine(t, answered().html(), &fakeRelay{}, Config{})

	for i := range 50 {
		kind := EventMutation
		if i%10 == 0 {
			kind = EventNavigate
		}
		h.post(t, Event{Kind: kind})
	}
	waitFor(t, "50 events", func() bool { return h.eng.Status().Events == 50 })

	h.clock.Advance(debounce.DefaultWindow - time.Millisecond)
	h.noPass(t)

	h.clock.Advance(time.Millisecond)
	h.nextPass(t)

	st := h.eng.Status()
	if st.Passes != 2 || st.Coalesced != 50 {
		t.Errorf("status: %+v", st)
	}

	h.clock.Advance(time.Second)
	h.noPass(t)
}

func TestEngine_InitialPassShowsTrigger(t *testing.T) {
	h := startEngine(t, answered().html(), &fakeRelay{}, Config{Session: "s-1"})

	st := h.eng.Status()
	if !st.Ready || !st.TriggerShown || st.Session != "s-1" || st.Passes != 1 {
		t.Fatalf("status: %+v", st)
	}
}

func TestEngine_ActivationExportsOffLoop(t *testing.T) {
	relay := &fakeRelay{resp: anki.Response{OK: true, Result: []byte("17")}, gate: make(chan struct{})}
	h := startEngine(t, answered().html(), relay, Config{Settings: settings.Settings{DeckName: "Renal"}})

	h.post(t, Event{Kind: EventActivate})
	waitFor(t, "export start", func() bool { return h.eng.Status().Exporting })

	// The loop keeps serving while the relay call is in flight.
	h.post(t, Event{Kind: EventMutation})
	waitFor(t, "mutation", func() bool { return h.eng.Status().Events == 1 })

	// A second click while in flight is dropped.
	h.post(t, Event{Kind: EventActivate})
	time.Sleep(20 * time.Millisecond)
	if relay.calls() != 1 {
		t.Fatalf("relay calls: %d", relay.calls())
	}

	close(relay.gate)
	waitFor(t, "export finish", func() bool { return h.eng.Status().LastExport != nil })

	st := h.eng.Status()
	if st.Exporting || !st.LastExport.OK {
		t.Errorf("status: %+v", st)
	}
	relay.mu.Lock()
	deck := relay.reqs[0].Params.Note.DeckName
	relay.mu.Unlock()
	if deck != "Renal" {
		t.Errorf("deck: %q", deck)
	}
}

func TestEngine_ActivationWithoutTriggerIgnored(t *testing.T) {
	relay := &fakeRelay{resp: anki.Response{OK: true}}
	h := startEngine(t, quizPage{}.html(), relay, Config{})

	h.post(t, Event{Kind: EventActivate})
	h.post(t, Event{Kind: EventMutation})
	waitFor(t, "mutation", func() bool { return h.eng.Status().Events == 1 })
	if relay.calls() != 0 {
		t.Fatal("relay called without trigger")
	}
}

func TestEngine_DebugTogglesLevel(t *testing.T) {
	level := new(slog.LevelVar)
	h := startEngine(t, answered().html(), &fakeRelay{}, Config{Level: level})

	if level.Level() != slog.LevelInfo {
		t.Fatalf("initial level: %v", level.Level())
	}

	h.post(t, Event{Kind: EventDebug, Debug: true})
	waitFor(t, "debug on", func() bool { return h.eng.Status().Debug })
	if level.Level() != slog.LevelDebug {
		t.Errorf("level: %v", level.Level())
	}

	// Toggling debug schedules a pass.
	h.clock.Advance(debounce.DefaultWindow)
	h.nextPass(t)

	h.post(t, Event{Kind: EventDebug, Debug: false})
	waitFor(t, "debug off", func() bool { return !h.eng.Status().Debug })
	if level.Level() != slog.LevelInfo {
		t.Errorf("level: %v", level.Level())
	}
}

func TestEngine_DebugOffRestoresConfiguredLevel(t *testing.T) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	h := startEngine(t, answered().html(), &fakeRelay{}, Config{Level: level})

	if level.Level() != slog.LevelWarn {
		t.Fatalf("New changed the level: %v", level.Level())
	}

	h.post(t, Event{Kind: EventDebug, Debug: true})
	waitFor(t, "debug on", func() bool { return level.Level() == slog.LevelDebug })

	h.post(t, Event{Kind: EventDebug, Debug: false})
	waitFor(t, "debug off", func() bool { return !h.eng.Status().Debug })
	if level.Level() != slog.LevelWarn {
		t.Errorf("level after debug off: %v", level.Level())
	}
}

func TestEngine_StatusSessionAndPendingPass(t *testing.T) {
	session := idgen.Session()
	h := startEngine(t, answered().html(), &fakeRelay{}, Config{Session: session})

	st := h.eng.Status()
	if st.Session != session || st.SessionStart.IsZero() || st.PassPending {
		t.Fatalf("status: %+v", st)
	}

	h.post(t, Event{Kind: EventMutation})
	waitFor(t, "pass scheduled", func() bool { return h.eng.Status().PassPending })

	h.clock.Advance(debounce.DefaultWindow)
	h.nextPass(t)
	waitFor(t, "pass done", func() bool { return !h.eng.Status().PassPending })
}

func TestEngine_SetSettingsNormalizes(t *testing.T) {
	h := startEngine(t, answered().html(), &fakeRelay{}, Config{})
	h.eng.SetSettings(settings.Settings{DeckName: "  ", Tags: "a"})
	got := h.eng.Settings()
	if got.DeckName != settings.DefaultDeckName || got.Tags != "a" {
		t.Errorf("settings: %+v", got)
	}
}
