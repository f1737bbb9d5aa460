package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/passmed2anki/anki"
	"github.com/hazyhaar/passmed2anki/settings"
)

const savedPage = `<!DOCTYPE html><html><body>
<div id="div_question">
  <div id="question_only"><p>A 30-year-old woman presents with palpitations. Which drug is first line?</p></div>
  <div class="list-group">
    <a class="list-group-item" href="#"><span>Adenosine</span></a>
    <a class="list-group-item" href="#" style="background: url(greenbar.png)"><span>Bisoprolol</span></a>
  </div>
  <div class="alert alert-success" role="alert"><p>Beta-blockers are first line for rate control in this setting.</p></div>
</div>
</body></html>`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	level := new(slog.LevelVar)
	a := &app{level: level, logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level}))}

	var out bytes.Buffer
	root := newRoot(a)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSettingsSetThenShow(t *testing.T) {
	store := filepath.Join(t.TempDir(), "prefs.db")

	if _, err := execute(t, "--store", store, "settings", "set", "--deck", "Cardiology", "--tags", "cardio, af"); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "--store", store, "settings", "show")
	if err != nil {
		t.Fatal(err)
	}
	var got settings.Settings
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("%v: %s", err, out)
	}
	want := settings.Settings{DeckName: "Cardiology", NoteType: settings.DefaultNoteType, Tags: "cardio, af"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSettingsSet_NothingToSet(t *testing.T) {
	store := filepath.Join(t.TempDir(), "prefs.db")
	if _, err := execute(t, "--store", store, "settings", "set"); err == nil {
		t.Fatal("expected error")
	}
}

func writePage(t *testing.T, html string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract_Markdown(t *testing.T) {
	store := filepath.Join(t.TempDir(), "prefs.db")
	out, err := execute(t, "--store", store, "extract", writePage(t, savedPage))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"## Question", "palpitations", "- Adenosine\n- Bisoprolol", "- chosen: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestExtract_JSONUsesStoredPreferences(t *testing.T) {
	store := filepath.Join(t.TempDir(), "prefs.db")
	if _, err := execute(t, "--store", store, "settings", "set", "--deck", "Arrhythmia"); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--store", store, "extract", "--json", writePage(t, savedPage))
	if err != nil {
		t.Fatal(err)
	}
	var req anki.NoteRequest
	if err := json.Unmarshal([]byte(out), &req); err != nil {
		t.Fatalf("%v: %s", err, out)
	}
	note := req.Params.Note
	if note.DeckName != "Arrhythmia" || !strings.HasPrefix(note.Fields.Back, "Bisoprolol<br><br>") {
		t.Errorf("note: %+v", note)
	}
}

func TestExtract_JSONUnansweredFails(t *testing.T) {
	store := filepath.Join(t.TempDir(), "prefs.db")
	page := `<html><body><div id="question_only">Which nerve supplies the deltoid muscle?</div></body></html>`
	if _, err := execute(t, "--store", store, "extract", "--json", writePage(t, page)); err == nil {
		t.Fatal("expected missing field error")
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "warn": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "loud": slog.LevelInfo,
	} {
		if got := parseLevel(in); got != want {
			t.Errorf("%q: got %v, want %v", in, got, want)
		}
	}
}

// blockedStore returns a store path whose parent is a regular file, so the
// store can never be created.
func blockedStore(t *testing.T) string {
	t.Helper()
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(blocker, "prefs.db")
}

func TestOpenPrefs_UnavailableStoreFallsBack(t *testing.T) {
	a := &app{level: new(slog.LevelVar), logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	store, prefs := a.openPrefs(context.Background(), blockedStore(t))
	if store != nil {
		t.Fatal("expected no store")
	}
	if prefs != settings.Defaults() {
		t.Errorf("prefs: %+v", prefs)
	}
}

func TestExtract_UnavailableStoreUsesDefaults(t *testing.T) {
	out, err := execute(t, "--store", blockedStore(t), "extract", "--json", writePage(t, savedPage))
	if err != nil {
		t.Fatal(err)
	}
	var req anki.NoteRequest
	if err := json.Unmarshal([]byte(out), &req); err != nil {
		t.Fatalf("%v: %s", err, out)
	}
	if req.Params.Note.DeckName != settings.DefaultDeckName {
		t.Errorf("deck: %q", req.Params.Note.DeckName)
	}
}

func TestWatch_UnavailableStoreIsNotFatal(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "passmed2anki.yaml")
	if err := os.WriteFile(cfgPath, []byte("relay:\n  endpoint: http://127.0.0.1:1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Nothing listens on the DevTools URL, so watch stops at the browser.
	_, err := execute(t, "--config", cfgPath, "--store", blockedStore(t),
		"watch", "--remote", "ws://127.0.0.1:1/devtools/browser/x")
	if err == nil {
		t.Fatal("expected browser connection error")
	}
	if !strings.Contains(err.Error(), "browser: connect") {
		t.Errorf("watch stopped before the browser: %v", err)
	}
}
